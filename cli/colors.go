package cli

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	errorText = color.New(color.FgRed).SprintFunc()
	okText    = color.New(color.FgGreen).SprintFunc()
	warnText  = color.New(color.FgYellow).SprintFunc()
)

func printError(err error) {
	fmt.Println(errorText("Error: " + err.Error()))
}

func printOK(msg string) {
	fmt.Println(okText(msg))
}

func printWarn(msg string) {
	fmt.Println(warnText(msg))
}
