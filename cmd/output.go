package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cottand/typealg/frontend/ast"
	"github.com/cottand/typealg/frontend/ilerr"
	"github.com/mattn/go-isatty"
)

const (
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiReset = "\033[0m"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// verdict prints text, coloured after ok when w is a terminal
func verdict(w io.Writer, ok bool, text string) {
	if !isTerminal(w) {
		_, _ = fmt.Fprintln(w, text)
		return
	}
	colour := ansiRed
	if ok {
		colour = ansiGreen
	}
	_, _ = fmt.Fprintln(w, colour+text+ansiReset)
}

// asIleError finds the ilerr.IleError err wraps, classifying err if there is none
func asIleError(err error) ilerr.IleError {
	var ileErr ilerr.IleError
	if errors.As(err, &ileErr) {
		return ileErr
	}
	return ilerr.New(ilerr.Unclassified{From: err, Positioner: ast.Range{}})
}

// diagnostic renders err with its code when it is an ilerr.IleError
func diagnostic(err error) string {
	var ileErr ilerr.IleError
	if errors.As(err, &ileErr) {
		return ilerr.FormatWithCode(ileErr)
	}
	return err.Error()
}
