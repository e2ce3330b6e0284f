package vcsrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/adapters"
)

// githubHosting implements the PR/release half of adapters.VCS against a
// GitHub-shaped REST API: a bearer Authorization header,
// http.DefaultClient.Do, and a status-code check before decoding JSON.
type githubHosting struct {
	baseURL string // e.g. "https://api.github.com"
	owner   string
	repo    string
	token   string
	client  *http.Client
}

func newGitHubHosting(baseURL, owner, repo, token string) *githubHosting {
	return &githubHosting{baseURL: baseURL, owner: owner, repo: repo, token: token, client: http.DefaultClient}
}

type ghPullRequest struct {
	Number         int    `json:"number"`
	HTMLURL        string `json:"html_url"`
	State          string `json:"state"`
	Merged         bool   `json:"merged"`
	Mergeable      *bool  `json:"mergeable"`
	MergeableState string `json:"mergeable_state"`
	Head           struct {
		Ref string `json:"ref"`
	} `json:"head"`
}

func (h *githubHosting) do(ctx context.Context, method, path string, body interface{}, out interface{}) (*http.Response, error) {
	u, err := url.Parse(h.baseURL)
	if err != nil {
		return nil, err
	}
	u.Path = u.Path + path

	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode >= 300 {
		return resp, errors.Errorf("%s %s: %s: %s", method, path, resp.Status, string(data))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, errors.Wrapf(err, "decode response from %s %s", method, path)
		}
	}
	return resp, nil
}

func (h *githubHosting) findPullRequest(ctx context.Context, branch string, filters adapters.PRFilters) (*adapters.PullRequest, error) {
	state := "all"
	if filters.Open {
		state = "open"
	}
	var prs []ghPullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls?state=%s&head=%s:%s", h.owner, h.repo, state, h.owner, branch)
	if _, err := h.do(ctx, http.MethodGet, path, nil, &prs); err != nil {
		return nil, err
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return h.toPullRequest(ctx, &prs[0])
}

func (h *githubHosting) openPullRequest(ctx context.Context, title, body, branch, base string) (*adapters.PullRequest, error) {
	payload := map[string]string{"title": title, "body": body, "head": branch, "base": base}
	var pr ghPullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls", h.owner, h.repo)
	if _, err := h.do(ctx, http.MethodPost, path, payload, &pr); err != nil {
		return nil, err
	}
	return h.toPullRequest(ctx, &pr)
}

func (h *githubHosting) mergePullRequest(ctx context.Context, pr *adapters.PullRequest) error {
	payload := map[string]string{"merge_method": "merge"}
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/merge", h.owner, h.repo, pr.Number)
	if _, err := h.do(ctx, http.MethodPut, path, payload, nil); err != nil {
		return err
	}
	pr.Merged = true
	return nil
}

func (h *githubHosting) createRelease(ctx context.Context, tag, message string) error {
	payload := map[string]interface{}{
		"tag_name": tag,
		"name":     tag,
		"body":     message,
	}
	path := fmt.Sprintf("/repos/%s/%s/releases", h.owner, h.repo)
	_, err := h.do(ctx, http.MethodPost, path, payload, nil)
	return err
}

// toPullRequest fetches the combined commit status and review decision to
// fill in the fields FindPullRequest's raw response doesn't carry.
func (h *githubHosting) toPullRequest(ctx context.Context, gh *ghPullRequest) (*adapters.PullRequest, error) {
	pr := &adapters.PullRequest{
		Number:         gh.Number,
		URL:            gh.HTMLURL,
		Merged:         gh.Merged,
		ClosedUnmerged: gh.State == "closed" && !gh.Merged,
		Mergeable:      gh.Mergeable != nil && *gh.Mergeable,
	}

	status, err := h.combinedStatus(ctx, gh.Head.Ref)
	if err != nil {
		return nil, err
	}
	pr.CombinedStatus = status

	changesRequested, err := h.changesRequested(ctx, gh.Number)
	if err != nil {
		return nil, err
	}
	pr.ChangesRequested = changesRequested

	return pr, nil
}

type ghCombinedStatus struct {
	State string `json:"state"`
}

func (h *githubHosting) combinedStatus(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "pending", nil
	}
	var cs ghCombinedStatus
	path := fmt.Sprintf("/repos/%s/%s/commits/%s/status", h.owner, h.repo, ref)
	if _, err := h.do(ctx, http.MethodGet, path, nil, &cs); err != nil {
		return "", err
	}
	// GitHub reports "failure" or "error"; adapters.PullRequest calls both
	// "failing".
	switch cs.State {
	case "failure", "error":
		return "failing", nil
	}
	return cs.State, nil
}

type ghReview struct {
	State string `json:"state"`
}

func (h *githubHosting) changesRequested(ctx context.Context, number int) (bool, error) {
	var reviews []ghReview
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", h.owner, h.repo, number)
	if _, err := h.do(ctx, http.MethodGet, path, nil, &reviews); err != nil {
		return false, err
	}
	for _, r := range reviews {
		if r.State == "CHANGES_REQUESTED" {
			return true, nil
		}
	}
	return false, nil
}
