package main

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appWithInput(input string) *app {
	return &app{in: bufio.NewReader(strings.NewReader(input))}
}

func TestConfirmAffirmatives(t *testing.T) {
	for _, answer := range []string{"y\n", "Y\n", "yes\n", "YES\n", " y \n"} {
		a := appWithInput(answer)
		assert.True(t, a.confirm("ok? "), "answer %q", answer)
	}
}

func TestConfirmRejections(t *testing.T) {
	for _, answer := range []string{"n\n", "no\n", "\n", "maybe\n", "yep\n"} {
		a := appWithInput(answer)
		assert.False(t, a.confirm("ok? "), "answer %q", answer)
	}
}

func TestConfirmEOFIsRejection(t *testing.T) {
	a := appWithInput("")
	assert.False(t, a.confirm("ok? "))
}

func TestPromptLineTrims(t *testing.T) {
	a := appWithInput("  hello world  \n")
	assert.Equal(t, "hello world", a.promptLine("> "))
}

func TestRunMenuExitChoice(t *testing.T) {
	a := appWithInput("5\n")
	require.NoError(t, a.runMenu(context.Background()))
}

func TestRunMenuInvalidChoiceThenExit(t *testing.T) {
	a := appWithInput("banana\n5\n")
	require.NoError(t, a.runMenu(context.Background()))
}

func TestRunMenuEOFExits(t *testing.T) {
	a := appWithInput("")
	require.NoError(t, a.runMenu(context.Background()))
}
