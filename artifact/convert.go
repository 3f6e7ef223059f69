package artifact

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// ToMarkdown converts a generated dashboard document into a plain
// Markdown listing. The embedded stylesheet and client script do not
// survive conversion, so the result is a static link list for users
// who no longer want the interactive file.
func ToMarkdown(htmlDoc string) (string, error) {
	result, err := mdConverter.ConvertString(htmlDoc)
	if err != nil {
		return "", fmt.Errorf("artifact: convert to markdown: %w", err)
	}
	result = strings.TrimSpace(result)
	if result == "" {
		return "", fmt.Errorf("artifact: conversion produced no content")
	}
	return result + "\n", nil
}
