// Package passage splits typing text into words and loads it from files.
package passage

import (
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Default is the built-in passage used when no text file is configured.
const Default = "The bikers rode down the long and narrow path to reach the city park. " +
	"When they reached a good spot to rest, they began to look for signs of spring. " +
	"The sun was bright, and a lot of bright red and blue blooms proved to all that warm spring days were the very best. " +
	"Spring rides were planned. They had a burger at the lake and then rode farther up the mountain. " +
	"As one rider started to get off his bike, he slipped and fell. " +
	"One of the other bikers saw him fall but could do nothing to help him. " +
	"Neither the boy nor the bike got hurt. After a brief stop, everyone was ready to go on. " +
	"All the bikers enjoyed the nice view when they came to the top. " +
	"All the roads far below them looked like ribbons. A dozen or so boats could be seen on the lake. " +
	"It was very quiet and peaceful and no one wished to leave. " +
	"As they set out on their return, they all enjoyed the ease of pedaling. " +
	"The bikers came upon a new bike trail. This route led to scenery far grander than that seen from the normal path. " +
	"The end of the day brought laughs and cheers from everyone. " +
	"The fact that each person was very, very tired did not keep anyone from eagerly planning for the exciting ride to come."

// Split breaks text into words on whitespace and punctuation. Empty
// fragments are dropped.
func Split(text string) []string {
	return strings.FieldsFunc(text, isSeparator)
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// Load reads a text file and splits it into words.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	words := Split(string(data))
	if len(words) == 0 {
		return nil, fmt.Errorf("passage is empty")
	}
	return words, nil
}

// Resolve returns the words of the file at path, or of Default when path
// is empty.
func Resolve(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return Split(Default), nil
	}
	return Load(path)
}
