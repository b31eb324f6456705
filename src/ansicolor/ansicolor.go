package ansicolor

import (
	"os"
	"runtime"
)

var Reset = "\033[0m"
var Bold = "\033[1m"
var Faint = "\033[2m"

var Red = "\033[31m"
var Green = "\033[32m"
var Yellow = "\033[33m"
var Blue = "\033[34m"
var Gray = "\033[37m"

var BgRed = "\033[41m"
var BgYellow = "\033[43m"
var BgBlue = "\033[44m"

func init() {
	_, noColor := os.LookupEnv("NO_COLOR")
	if runtime.GOOS == "windows" || noColor {
		Disable()
	}
}

// Disable blanks every escape sequence so log output stays plain.
func Disable() {
	for _, c := range []*string{
		&Reset, &Bold, &Faint,
		&Red, &Green, &Yellow, &Blue, &Gray,
		&BgRed, &BgYellow, &BgBlue,
	} {
		*c = ""
	}
}
