package cmd

var (
	configPath        string
	naming            string
	downloadDirectory string

	chapterURL   string
	outputFormat string
	imageQuality string
	deviceSecret string
	position     string
	baseURL      string

	maxWorkers   int
	allowPartial bool
)

func initRootFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		"",
		"specifies the path to your config file",
	)
}

func initDownloadFlags() {
	downloadCmd.Flags().StringVarP(
		&chapterURL,
		"url",
		"u",
		"",
		"specifies the chapter or manga viewer url you want to download from",
	)
	downloadCmd.Flags().StringVarP(
		&downloadDirectory,
		"downloadDirectory",
		"d",
		"",
		"specifies the directory where you want to save your downloads to",
	)
	downloadCmd.Flags().StringVarP(
		&naming,
		"naming",
		"n",
		"Ch. {num:3}{title: - <.>}",
		"specifies the naming template you want to use for naming chapters",
	)
	downloadCmd.Flags().StringVarP(
		&outputFormat,
		"format",
		"f",
		"",
		"specifies the output format, one of raw, cbz or pdf",
	)

	downloadCmd.Flags().StringVarP(
		&imageQuality,
		"quality",
		"q",
		"",
		"specifies the image quality to request, one of normal or high",
	)
	downloadCmd.Flags().StringVarP(
		&deviceSecret,
		"secret",
		"s",
		"",
		"specifies the device secret to identify with, random when empty",
	)
	downloadCmd.Flags().StringVarP(
		&position,
		"position",
		"p",
		"first",
		"specifies which chapter to pick when the url names a manga, one of first or last",
	)

	downloadCmd.Flags().StringVarP(
		&baseURL,
		"baseURL",
		"b",
		"",
		"overrides the platform api base url, for self-hosted mirrors",
	)

	downloadCmd.Flags().IntVarP(
		&maxWorkers,
		"workers",
		"w",
		0,
		"bounds how many pages are fetched at the same time, 0 derives it from available parallelism",
	)
	downloadCmd.Flags().BoolVarP(
		&allowPartial,
		"allow-partial",
		"P",
		false,
		"write the archive even when some pages failed to download",
	)

	_ = downloadCmd.MarkFlagRequired("url")
}
