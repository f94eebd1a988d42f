package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"tankobon/internal/archive"
	"tankobon/internal/buildinfo"
	"tankobon/internal/config"
	"tankobon/internal/fetch"
	"tankobon/internal/logger"
	"tankobon/internal/sanitize"
	"tankobon/internal/source"
	"tankobon/internal/templater"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the chapter behind a viewer url",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		cfg := config.New(configPath, buildinfo.Version)
		log := logger.New(cfg.Config)
		cfg.DynamicReload(log)

		if cmd.Flags().Changed("downloadDirectory") {
			cfg.Config.DownloadLocation = downloadDirectory
		}
		if cmd.Flags().Changed("naming") {
			cfg.Config.NamingTemplate = naming
		}
		if cmd.Flags().Changed("format") {
			cfg.Config.OutputFormat = outputFormat
		}
		if cmd.Flags().Changed("quality") {
			cfg.Config.ImageQuality = imageQuality
		}
		if cmd.Flags().Changed("secret") {
			cfg.Config.DeviceSecret = deviceSecret
		}
		if cmd.Flags().Changed("workers") {
			cfg.Config.MaxWorkers = maxWorkers
		}

		if err := archive.IsValidLocation(cfg.Config.DownloadLocation); err != nil {
			fmt.Println("Invalid location:", err)
			return
		}

		format, err := archive.ParseFormat(cfg.Config.OutputFormat)
		if err != nil {
			fmt.Println("Invalid format:", err)
			return
		}

		provider, err := source.NewFromURL(chapterURL, source.Options{
			Quality:      cfg.Config.ImageQuality,
			DeviceSecret: cfg.Config.DeviceSecret,
			Position:     position,
			BaseURL:      baseURL,
		})
		if err != nil {
			fmt.Printf("No provider for url %q, supported providers: %v\n", chapterURL, source.Names())
			return
		}

		if err := provider.ValidateInput(); err != nil {
			fmt.Printf("Invalid input: %v\n", err)
			return
		}

		log.Debug().Str("provider", provider.String()).Str("url", chapterURL).Msg("resolving chapter")

		chapter, err := provider.ResolveChapter(ctx)
		if err != nil {
			fmt.Printf("Failed to resolve chapter from %q: %v\n", provider, err)
			return
		}

		chapterLog := log.With().Str("provider", provider.String()).Str("chapter", chapter.ID).Logger()

		t := templater.New(chapter)
		templatedName := t.ExecTemplate(cfg.Config.NamingTemplate)

		chapterName := sanitize.Filename(templatedName)
		contentPath := filepath.Join(cfg.Config.DownloadLocation, chapterName+format.Ext())

		fmt.Printf("Downloading %q...\n", templatedName)

		results, err := fetch.Run(ctx, provider, chapter, fetch.Options{Workers: cfg.Config.MaxWorkers})
		if err != nil {
			var partial *fetch.PartialFailure
			if !errors.As(err, &partial) || !allowPartial {
				fmt.Printf("Failed to download chapter %q: %v\n", templatedName, err)
				return
			}

			for _, failure := range partial.Failed {
				chapterLog.Warn().Err(failure.Err).Int("page", failure.Index+1).Msg("page failed")
			}
			fmt.Printf("Writing partial chapter, %d pages missing\n", len(partial.Failed))
		}

		if err := archive.Write(format, results, contentPath); err != nil {
			fmt.Printf("Failed to write chapter %q: %v\n", templatedName, err)
			return
		}

		chapterLog.Debug().Int("pages", len(results)).Str("path", contentPath).Msg("chapter written")
		fmt.Printf("Finished downloading %q\n", templatedName)
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the supported providers",
	Run: func(_ *cobra.Command, _ []string) {
		for _, name := range source.Names() {
			fmt.Println(name)
		}
	},
}
