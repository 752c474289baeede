package main

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"
)

func readClipboard() (string, error) {
	if runtime.GOOS == "darwin" {
		if out, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(out), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// pasteText reads the clipboard and flattens it to a single label line.
func pasteText() (string, error) {
	text, err := readClipboard()
	if err != nil {
		return "", err
	}
	return cleanPastedText(text), nil
}

// cleanPastedText strips markup and folds whitespace runs, newlines
// included, into single spaces. Labels are one line.
func cleanPastedText(text string) string {
	if text == "" {
		return ""
	}
	switch {
	case isRTF(text):
		text = stripRTF(text)
	case isHTML(text):
		text = stripTags(text)
	}
	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case r < 32 || r == 127:
			return -1
		}
		return r
	}, text)
	return strings.Join(strings.Fields(text), " ")
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf")
}

func isHTML(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "<") &&
		(strings.Contains(t, "<html") || strings.Contains(t, "<body") || strings.Contains(t, "<div") || strings.Contains(t, "<span"))
}

var htmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

func stripTags(html string) string {
	var b strings.Builder
	b.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return htmlEntities.Replace(b.String())
}

// stripRTF keeps the plain text of an RTF fragment. Groups that start with a
// destination control word (\fonttbl, \colortbl, \*) are skipped whole.
func stripRTF(rtf string) string {
	var b strings.Builder
	runes := []rune(rtf)
	depth, skipAt := 0, -1
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '{':
			depth++
			continue
		case '}':
			if depth == skipAt {
				skipAt = -1
			}
			depth--
			continue
		case '\\':
		default:
			if skipAt < 0 && r != '\n' && r != '\r' {
				b.WriteRune(r)
			}
			continue
		}
		if i+1 >= len(runes) {
			break
		}
		next := runes[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			if skipAt < 0 {
				b.WriteRune(next)
			}
			i++
		case next == '*':
			if skipAt < 0 {
				skipAt = depth
			}
			i++
		case next == '\'' && i+3 < len(runes):
			if v, err := strconv.ParseUint(string(runes[i+2:i+4]), 16, 8); err == nil && skipAt < 0 {
				b.WriteRune(rune(v))
			}
			i += 3
		case unicode.IsLetter(next):
			j := i + 1
			for j < len(runes) && unicode.IsLetter(runes[j]) {
				j++
			}
			word := string(runes[i+1 : j])
			for j < len(runes) && (runes[j] == '-' || unicode.IsDigit(runes[j])) {
				j++
			}
			if j < len(runes) && runes[j] == ' ' {
				j++
			}
			i = j - 1
			switch word {
			case "fonttbl", "colortbl", "stylesheet", "info", "pict":
				if skipAt < 0 {
					skipAt = depth
				}
			case "par", "line", "tab":
				if skipAt < 0 {
					b.WriteRune(' ')
				}
			}
		default:
			i++
		}
	}
	return b.String()
}
