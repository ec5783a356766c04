// Command validate checks room preset files before they are deployed with
// --presets-dir. It checks:
//   - The file parses as JSON or YAML
//   - The id (or file name) is present
//   - max_rounds and max_players fall within the server's room bounds
//   - No two files claim the same id
//   - Files that override a built-in preset are reported
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/wordle-rooms/game/config"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	ID     string
	Valid  bool
	Errors []string
}

// validatePreset loads and validates a single preset file.
func validatePreset(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	p, err := config.LoadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.ID = p.ID
	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ id %q, %d rounds, %d players", p.ID, p.MaxRounds, p.MaxPlayers))
	return result
}

// validateDir validates every preset file in dir, sorted by name, and
// flags ids that more than one file claims.
func validateDir(dir string) ([]ValidationResult, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	builtin, err := config.NewManager("")
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(files))
	owners := make(map[string]string)
	for _, file := range files {
		result := validatePreset(file)
		if result.Valid {
			if first, ok := owners[result.ID]; ok {
				result.Valid = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("id %q is already defined in %s", result.ID, first))
			} else {
				owners[result.ID] = result.File
			}
			if _, err := builtin.Preset(result.ID); err == nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("✓ overrides built-in preset %q", result.ID))
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// main validates the directory given as the first argument (default
// ./presets), printing a concise report and exiting with non-zero status
// if any file is invalid.
func main() {
	dir := "presets"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	results, err := validateDir(dir)
	if err != nil {
		fmt.Printf("Error finding preset files: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Printf("No preset files found in %s\n", dir)
		return
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
