// Package tracker mirrors tasks into an external issue tracker.
//
// The concrete client wraps the gh CLI so the server needs no token
// handling of its own — gh's stored credentials are reused. Tools depend
// on the Client interface; when the tracker is disabled a Disabled client
// reports that explicitly instead of silently dropping calls.
package tracker

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Issue is the subset of tracker issue fields the server uses.
type Issue struct {
	Number int64  `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	URL    string `json:"url"`
}

// Client is the tracker surface consumed by the issue tools.
type Client interface {
	// CreateIssue opens a new issue and returns it.
	CreateIssue(title, body string) (*Issue, error)

	// Comment appends a comment to an existing issue.
	Comment(number int64, body string) error

	// CloseIssue closes an issue, optionally with a final comment.
	CloseIssue(number int64, comment string) error
}

// GHClient implements Client by invoking the gh CLI.
type GHClient struct {
	Bin  string // gh binary (default "gh")
	Repo string // owner/name passed via --repo
}

// NewGHClient creates a GHClient for the given repository.
func NewGHClient(bin, repo string) *GHClient {
	if bin == "" {
		bin = "gh"
	}
	return &GHClient{Bin: bin, Repo: repo}
}

func (c *GHClient) run(args ...string) ([]byte, error) {
	all := append([]string{}, args...)
	if c.Repo != "" {
		all = append(all, "--repo", c.Repo)
	}
	cmd := exec.Command(c.Bin, all...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("gh %s: %w\n%s", strings.Join(args, " "), err, string(out))
	}
	return out, nil
}

// CreateIssue opens a new issue via gh and parses the returned URL for
// the issue number (gh issue create prints the issue URL).
func (c *GHClient) CreateIssue(title, body string) (*Issue, error) {
	out, err := c.run("issue", "create", "--title", title, "--body", body)
	if err != nil {
		return nil, err
	}

	url := strings.TrimSpace(string(out))
	number, err := numberFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse gh issue create output %q: %w", url, err)
	}
	return &Issue{Number: number, Title: title, State: "open", URL: url}, nil
}

// Comment appends a comment to an issue.
func (c *GHClient) Comment(number int64, body string) error {
	_, err := c.run("issue", "comment", strconv.FormatInt(number, 10), "--body", body)
	return err
}

// CloseIssue closes an issue, optionally with a final comment.
func (c *GHClient) CloseIssue(number int64, comment string) error {
	args := []string{"issue", "close", strconv.FormatInt(number, 10)}
	if comment != "" {
		args = append(args, "--comment", comment)
	}
	_, err := c.run(args...)
	return err
}

// View fetches an issue as JSON. Not part of Client — used by diagnostics.
func (c *GHClient) View(number int64) (*Issue, error) {
	out, err := c.run("issue", "view", strconv.FormatInt(number, 10), "--json", "number,title,state,url")
	if err != nil {
		return nil, err
	}
	var issue Issue
	if err := json.Unmarshal(out, &issue); err != nil {
		return nil, fmt.Errorf("parse gh issue view output: %w", err)
	}
	return &issue, nil
}

// numberFromURL extracts the trailing issue number from a gh issue URL.
func numberFromURL(url string) (int64, error) {
	idx := strings.LastIndex(url, "/")
	if idx < 0 || idx == len(url)-1 {
		return 0, fmt.Errorf("no issue number in %q", url)
	}
	return strconv.ParseInt(url[idx+1:], 10, 64)
}

// ErrDisabled is returned by the Disabled client for every operation.
var ErrDisabled = fmt.Errorf("issue tracker is not configured")

// Disabled is the Client used when the tracker integration is off.
type Disabled struct{}

func (Disabled) CreateIssue(string, string) (*Issue, error) { return nil, ErrDisabled }
func (Disabled) Comment(int64, string) error                { return ErrDisabled }
func (Disabled) CloseIssue(int64, string) error             { return ErrDisabled }
