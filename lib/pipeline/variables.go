// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// variablePattern matches ${NAME} references in hook scripts. Only the
// braced form is recognized; bare $NAME is left for the shell
// interpreter. Variable names must start with a letter or underscore
// and contain only letters, digits, and underscores.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand replaces ${NAME} references in input with values from the
// variables map. Returns an error listing every referenced variable
// that has no value, so a hook with a typo fails before its script
// runs rather than executing with a broken command line.
func Expand(input string, variables map[string]string) (string, error) {
	var unresolved []string

	result := variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[2 : len(match)-1]
		if value, exists := variables[name]; exists {
			return value
		}
		unresolved = append(unresolved, name)
		return match
	})

	if len(unresolved) > 0 {
		return "", fmt.Errorf("unresolved pipeline variables: %s", strings.Join(unresolved, ", "))
	}

	return result, nil
}

// Variables returns the expansion variables available to hook scripts:
// the package name and the run's resolved directories. Hook scripts
// reference them as ${PACKAGE}, ${DIST_DIR}, and so on; everything
// else in a script is plain shell.
func (d *Driver) Variables() map[string]string {
	return map[string]string{
		"PACKAGE":     d.name,
		"PROJECT_DIR": d.Config.ProjectDir,
		"DIST_DIR":    d.Config.ResolveDir(d.Config.DistDir),
		"RESULTS_DIR": d.Config.ResolveDir(d.Config.ResultsDir),
		"LOG_DIR":     d.Config.ResolveDir(d.Config.LogDir),
	}
}
