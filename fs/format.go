package fs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fwojciec/guji"
)

// SourceName is the attribution shown in the document header.
const SourceName = "识典古籍"

// unsafeFileChars are replaced in file names.
var unsafeFileChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// FileName returns the Markdown file name for a document title.
func FileName(title string) string {
	name := strings.TrimSpace(unsafeFileChars.Replace(title))
	if name == "" {
		name = "untitled"
	}
	return name + ".md"
}

// FormatDocument renders a document as Markdown: a title header, a
// source block, a table of contents, then every chapter as a heading,
// a source line, a rule, the body and a closing rule.
func FormatDocument(doc *guji.Document) string {
	titles := make([]string, len(doc.Chapters))
	for i, ch := range doc.Chapters {
		titles[i] = chapterTitle(ch)
	}
	anchors := guji.Anchors(titles)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "> 来源：%s %s\n", SourceName, doc.SourceURL)
	fmt.Fprintf(&b, "> 书籍ID：%s\n", doc.BookID)
	fmt.Fprintf(&b, "> 章节数：%d\n", len(doc.Chapters))
	fmt.Fprintf(&b, "> 获取时间：%s\n\n", doc.FetchedAt.Format("2006-01-02"))

	b.WriteString("## 目录\n\n")
	for i, title := range titles {
		anchor := anchors[i]
		if anchor == "" {
			anchor = "chapter-" + strconv.Itoa(i+1)
		}
		fmt.Fprintf(&b, "%d. [%s](#%s)\n", i+1, title, anchor)
	}
	b.WriteString("\n---\n\n")

	for i, ch := range doc.Chapters {
		fmt.Fprintf(&b, "## %s\n\n", titles[i])
		fmt.Fprintf(&b, "来源：%s\n\n", ch.Ref.URL)
		b.WriteString("---\n\n")
		b.WriteString(ch.Text)
		b.WriteString("\n\n---\n\n")
	}

	return b.String()
}

// chapterTitle falls back to the chapter ID, then the URL, when the
// chapter has no title.
func chapterTitle(ch guji.CleanedChapter) string {
	if t := strings.TrimSpace(ch.Ref.Title); t != "" {
		return t
	}
	if id := guji.ChapterID(ch.Ref.URL); id != "" {
		return id
	}
	return ch.Ref.URL
}
