package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatCount renders n with thousands separators, e.g. "1,048,576 samples".
func formatCount(n int) string {
	noun := "samples"
	if n == 1 {
		noun = "sample"
	}
	return printer.Sprintf("%d %s", n, noun)
}
