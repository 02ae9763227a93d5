package agent

import "strings"

// Confirmation-prompt markers that suggest a command is stuck waiting
// for interactive input. Approximate on purpose; the notes are
// advisory text in feedback, not control flow.
var interactiveMarkers = []string{
	"[y/n]",
	"[y/N]",
	"[Y/n]",
	"(y/n)",
	"(yes/no)",
	"password:",
	"Password:",
	"Do you want to continue",
}

var downloadCommands = []string{"curl ", "wget ", "git clone"}

func heuristicNotes(command string, res CommandResult) []string {
	var notes []string

	combined := res.Stdout + "\n" + res.Stderr
	for _, marker := range interactiveMarkers {
		if strings.Contains(combined, marker) {
			notes = append(notes, "the command appears to be waiting for interactive confirmation; "+
				"rerun it with a non-interactive flag (for example -y or --yes)")
			break
		}
	}

	if res.Success() {
		for _, dl := range downloadCommands {
			if strings.Contains(command, dl) && len(strings.TrimSpace(combined)) < 16 {
				notes = append(notes, "a download-style command produced almost no output; "+
					"verify the target file exists and has a plausible size (ls -l) before continuing")
				break
			}
		}
	}

	return notes
}
