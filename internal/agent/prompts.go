package agent

import (
	"fmt"
	"os"
	"os/user"
	"runtime"
	"strings"
)

const baseSystemPrompt = `You are an autonomous shell agent. Complete tasks by running shell commands.

REPLY FORMAT — always output exactly one JSON object, nothing else:
  Run a command : {"action": "run",  "command": "...", "reason": "..."}
  Task is done  : {"action": "done", "summary": "..."}
  Ask the user  : {"action": "ask",  "question": "..."}

RULES:
- Output ONLY the JSON object. Zero prose, zero markdown, zero backticks.
- One command per reply. Keep commands simple.
- Move files with bash for-loops, never xargs -I with -n:
    for f in /path/*.ext; do mv "$f" /dest/; done
- Write files with: printf 'text' > file.txt
- Use full absolute paths always.
- Before acting on a directory, run ls to see what's there.

ON FAILURE (exit code != 0):
- Never repeat the failed command.
- Try a simpler alternative. Break complex steps into smaller ones.

ASKING QUESTIONS:
- Only use {"action":"ask"} when you genuinely cannot proceed without more info.
- Do NOT ask for confirmation. Just do the task.
- Do NOT ask "do you want me to..." — assume yes and proceed.

FINISHING:
- Verify success before marking done (ls, cat, etc.).
- Use {"action":"done"} only when fully confirmed complete.`

const webActionsPrompt = `
WEB TOOLS (available this session):
  Search the web : {"action": "search", "query": "...", "reason": "..."}
  Fetch a page   : {"action": "fetch",  "url": "...",   "reason": "..."}
Use them only when local commands cannot answer the question.`

const retryPrompt = `BAD JSON. Reply with ONLY a raw JSON object. No text before or after. ` +
	`Example: {"action":"run","command":"ls /tmp","reason":"explore"}`

const emptyCommandPrompt = `Empty command. Give {"action":"run","command":"...","reason":"..."}.`

// BuildSystemPrompt assembles the system message: base rules, an
// environment block with exact paths, optional web actions, and the
// user's custom instructions.
func BuildSystemPrompt(customInstructions string, webAvailable bool) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)
	if webAvailable {
		b.WriteString("\n")
		b.WriteString(webActionsPrompt)
	}
	b.WriteString("\n\n")
	b.WriteString(envBlock())
	if ci := strings.TrimSpace(customInstructions); ci != "" {
		b.WriteString("\n\nCUSTOM INSTRUCTIONS:\n")
		b.WriteString(ci)
	}
	return b.String()
}

func envBlock() string {
	username := "unknown"
	home := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
		home = u.HomeDir
	}
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	hostname, _ := os.Hostname()
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	cwd, _ := os.Getwd()

	return fmt.Sprintf(`SYSTEM ENVIRONMENT (use these exact paths — never guess):
  username : %s
  home dir : %s
  hostname : %s
  OS       : %s/%s
  shell    : %s
  cwd      : %s`, username, home, hostname, runtime.GOOS, runtime.GOARCH, shell, cwd)
}

func initialTaskMessage(task string) string {
	return fmt.Sprintf("Task: %s\n\n"+
		"First run ls on any target directory to see what's there. "+
		"Do NOT ask for confirmation — just do the task. JSON only.", task)
}

func resumeAnchor(task string) string {
	return fmt.Sprintf("Task (resume): %s\nRun ls on the target path first. JSON only.", task)
}

func askFollowup(answer string) string {
	return answer + "\n\nContinue task now. Do NOT ask more questions. JSON only."
}

func successFeedback(cmd string, res CommandResult, notes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RESULT: SUCCESS\nCommand: %s\nstdout:\n%s\nstderr:\n%s\n", cmd, res.Stdout, res.Stderr)
	for _, n := range notes {
		fmt.Fprintf(&b, "NOTE: %s\n", n)
	}
	b.WriteString("\nIs the full task now complete?\n" +
		`- Yes: {"action":"done","summary":"..."}` + "\n" +
		"- No:  next command as JSON. Do NOT ask questions.")
	return b.String()
}

func failureFeedback(cmd string, res CommandResult, notes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RESULT: FAILED (exit %s)\nCommand: %s\nstdout:\n%s\nstderr:\n%s\n",
		res.ExitLabel(), cmd, res.Stdout, res.Stderr)
	for _, n := range notes {
		fmt.Fprintf(&b, "NOTE: %s\n", n)
	}
	b.WriteString("\nDo NOT repeat this command.\n" +
		"Try something simpler. For file moves use:\n" +
		`{"action":"run","command":"for f in /path/*.ext; do mv \"$f\" /dest/; done","reason":"..."}` + "\n" +
		"JSON only.")
	return b.String()
}

func webResultFeedback(kind, subject, body string) string {
	return fmt.Sprintf("%s RESULT for %s:\n%s\n\nContinue the task. JSON only.", kind, subject, body)
}

func webUnavailableFeedback(kind string) string {
	return fmt.Sprintf("%s is unavailable this session. Proceed using your own knowledge. JSON only.", kind)
}
