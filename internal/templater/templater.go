package templater

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tankobon/internal/domain"
	"tankobon/internal/utils"
)

var templatePattern = regexp.MustCompile(`{((\w+?)(:.*?)?)}`)

type Templater struct {
	Chapter domain.Chapter
}

func New(chapter domain.Chapter) *Templater {
	return &Templater{
		Chapter: chapter,
	}
}

func (t *Templater) handleNum(options string) string {
	// platforms without chapter numbering fall back to the chapter id,
	// so the default template never renders a zero number
	if t.Chapter.Number == 0 && t.Chapter.ID != "" {
		return t.Chapter.ID
	}

	if options == "" {
		return fmt.Sprintf("%g", t.Chapter.Number)
	}

	length, _ := strconv.ParseInt(strings.ReplaceAll(options, ":", ""), 10, 32)
	return utils.PadFloat(t.Chapter.Number, int(length))
}

func (t *Templater) handleID(options string) string {
	if t.Chapter.ID == "" {
		return ""
	}

	cleanString := strings.ReplaceAll(options, ":", "")
	if cleanString == "" {
		return t.Chapter.ID
	}
	return strings.ReplaceAll(cleanString, "<.>", t.Chapter.ID)
}

func (t *Templater) handleChapterTitle(options string) string {
	if t.Chapter.Title == "" {
		return ""
	}

	cleanString := strings.ReplaceAll(options, ":", "")
	return strings.ReplaceAll(cleanString, "<.>", t.Chapter.Title)
}

func (t *Templater) ExecTemplate(template string) string {
	newString := template
	for _, match := range templatePattern.FindAllStringSubmatch(template, -1) {
		replace := match[0]

		varName := match[2]
		switch varName {
		case "num":
			options := ""
			if len(match) > 3 {
				options = match[3]
			}
			replace = t.handleNum(options)
		case "id":
			replace = t.handleID(match[3])
		case "title":
			replace = t.handleChapterTitle(match[3])
		}

		newString = strings.Replace(newString, match[0], replace, 1)
	}

	return newString
}
