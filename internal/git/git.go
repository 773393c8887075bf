package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

type ChangedFile struct {
	Path         string
	ChangedLines []int
}

var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

// ChangedFiles runs git diff against baseRef inside repo.
func ChangedFiles(ctx context.Context, repo, baseRef string) ([]ChangedFile, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repo, "diff", "-U0", baseRef)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	return ParseDiff(output), nil
}

// Paths returns the repository-relative paths of changes.
func Paths(changes []ChangedFile) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.Path)
	}
	return out
}

// ParseDiff reads unified diff output with zero context lines. Deleted files
// are dropped.
func ParseDiff(output []byte) []ChangedFile {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	var changes []ChangedFile
	var current *ChangedFile

	flush := func() {
		if current != nil && current.Path != "" {
			changes = append(changes, *current)
		}
		current = nil
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "diff --git"):
			flush()
			parts := strings.Fields(line)
			if len(parts) >= 4 {
				current = &ChangedFile{Path: strings.TrimPrefix(parts[3], "b/"), ChangedLines: []int{}}
			}
		case current == nil:
		case strings.HasPrefix(line, "+++ /dev/null"):
			current.Path = ""
		case strings.HasPrefix(line, "@@"):
			m := hunkHeader.FindStringSubmatch(line)
			if len(m) < 2 {
				continue
			}
			start, _ := strconv.Atoi(m[1])
			count := 1
			if m[2] != "" {
				count, _ = strconv.Atoi(m[2])
			}
			for i := 0; i < count; i++ {
				current.ChangedLines = append(current.ChangedLines, start+i)
			}
		}
	}
	flush()
	return changes
}
