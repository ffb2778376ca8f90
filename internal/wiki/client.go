package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/commons-tools/fpc-bot/internal/fpc"
)

// ErrNotLoggedIn is returned by write operations before a successful Login
var ErrNotLoggedIn = errors.New("not logged in")

const csrfKey = "csrf"

// Options configures a Client
type Options struct {
	APIURL          string // e.g. https://commons.wikimedia.org/w/api.php
	UserAgent       string
	CandidatePrefix string // only templates under this prefix are candidates
	Timeout         time.Duration
}

// Client is a MediaWiki Action API client
type Client struct {
	apiURL     string
	userAgent  string
	prefix     string
	httpClient *http.Client
	cache      *cache.Cache
	loggedIn   bool
}

// NewClient creates a new MediaWiki API client
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	// Login state lives in session cookies
	jar, _ := cookiejar.New(nil)

	return &Client{
		apiURL:    opts.APIURL,
		userAgent: opts.UserAgent,
		prefix:    opts.CandidatePrefix,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		// First revisions never change
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

// apiError is the error object MediaWiki returns with HTTP 200
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// call performs an API request. GET requests carry params in the query string,
// POST requests in a form body.
func (c *Client) call(ctx context.Context, method string, params url.Values, result interface{}) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var (
		req *http.Request
		err error
	)
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, c.apiURL, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.apiURL+"?"+params.Encode(), nil)
	}
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("api error %s: %s", envelope.Error.Code, envelope.Error.Info)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal data: %w", err)
		}
	}

	return nil
}

// onePage runs a titles= query and returns the single page in the result
func (c *Client) onePage(ctx context.Context, params url.Values) (*page, error) {
	var result queryResult
	if err := c.call(ctx, http.MethodGet, params, &result); err != nil {
		return nil, err
	}
	if len(result.Query.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", fpc.ErrPageMissing, params.Get("titles"))
	}

	p := &result.Query.Pages[0]
	if p.Missing || p.Invalid {
		return nil, fmt.Errorf("%w: %s", fpc.ErrPageMissing, params.Get("titles"))
	}
	return p, nil
}

// Templates returns every page transcluded on title
func (c *Client) Templates(ctx context.Context, title string) ([]string, error) {
	var titles []string
	cont := map[string]string{}

	for {
		params := url.Values{
			"action":  {"query"},
			"prop":    {"templates"},
			"titles":  {title},
			"tllimit": {"max"},
		}
		for k, v := range cont {
			params.Set(k, v)
		}

		var result queryResult
		if err := c.call(ctx, http.MethodGet, params, &result); err != nil {
			return nil, fmt.Errorf("get templates: %w", err)
		}
		for _, p := range result.Query.Pages {
			if p.Missing {
				return nil, fmt.Errorf("get templates: %w: %s", fpc.ErrPageMissing, title)
			}
			for _, t := range p.Templates {
				titles = append(titles, t.Title)
			}
		}

		if len(result.Continue) == 0 {
			break
		}
		cont = result.Continue
	}

	return titles, nil
}

// Candidates lists the nominations transcluded on a candidate list or log page
func (c *Client) Candidates(ctx context.Context, listPage string) ([]string, error) {
	templates, err := c.Templates(ctx, listPage)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, t := range templates {
		if strings.HasPrefix(t, c.prefix) {
			candidates = append(candidates, t)
		}
	}
	return candidates, nil
}

// PageText fetches the current wikitext of a page
func (c *Client) PageText(ctx context.Context, title string) (string, error) {
	p, err := c.onePage(ctx, url.Values{
		"action":  {"query"},
		"prop":    {"info|revisions"},
		"rvprop":  {"content"},
		"rvslots": {"main"},
		"titles":  {title},
	})
	if err != nil {
		return "", fmt.Errorf("get page text: %w", err)
	}
	if p.Redirect {
		return "", fmt.Errorf("get page text: %w: %s", fpc.ErrRedirect, title)
	}
	if len(p.Revisions) == 0 {
		return "", fmt.Errorf("get page text: %w: %s", fpc.ErrPageMissing, title)
	}

	return p.Revisions[0].Slots.Main.Content, nil
}

// FirstRevision returns the oldest revision of a page, or nil if the page has
// no history
func (c *Client) FirstRevision(ctx context.Context, title string) (*Revision, error) {
	key := "first:" + title
	if v, ok := c.cache.Get(key); ok {
		return v.(*Revision), nil
	}

	p, err := c.onePage(ctx, url.Values{
		"action":  {"query"},
		"prop":    {"revisions"},
		"rvprop":  {"timestamp|user"},
		"rvdir":   {"newer"},
		"rvlimit": {"1"},
		"titles":  {title},
	})
	if errors.Is(err, fpc.ErrPageMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get first revision: %w", err)
	}
	if len(p.Revisions) == 0 {
		return nil, nil
	}

	rev := &p.Revisions[0]
	c.cache.Set(key, rev, cache.NoExpiration)
	return rev, nil
}

// CreatedAt returns the timestamp of the first revision. The boolean is false
// when the history could not be found.
func (c *Client) CreatedAt(ctx context.Context, title string) (time.Time, bool, error) {
	rev, err := c.FirstRevision(ctx, title)
	if err != nil || rev == nil {
		return time.Time{}, false, err
	}
	return rev.Timestamp, true, nil
}

func (c *Client) token(ctx context.Context, kind string) (string, error) {
	var result queryResult
	err := c.call(ctx, http.MethodGet, url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"type":   {kind},
	}, &result)
	if err != nil {
		return "", fmt.Errorf("get %s token: %w", kind, err)
	}

	tok := result.Query.Tokens.CSRFToken
	if kind == "login" {
		tok = result.Query.Tokens.LoginToken
	}
	if tok == "" {
		return "", fmt.Errorf("get %s token: empty token", kind)
	}
	return tok, nil
}

// Login authenticates with a bot password (Special:BotPasswords)
func (c *Client) Login(ctx context.Context, user, password string) error {
	tok, err := c.token(ctx, "login")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var result struct {
		Login struct {
			Result string `json:"result"`
			Reason string `json:"reason"`
		} `json:"login"`
	}
	err = c.call(ctx, http.MethodPost, url.Values{
		"action":     {"login"},
		"lgname":     {user},
		"lgpassword": {password},
		"lgtoken":    {tok},
	}, &result)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if result.Login.Result != "Success" {
		return fmt.Errorf("login: %s %s", result.Login.Result, result.Login.Reason)
	}

	c.loggedIn = true
	c.cache.Delete(csrfKey)
	return nil
}

// AppendText adds text to the end of an existing page
func (c *Client) AppendText(ctx context.Context, title, text, summary string) error {
	if !c.loggedIn {
		return ErrNotLoggedIn
	}

	var csrf string
	if v, ok := c.cache.Get(csrfKey); ok {
		csrf = v.(string)
	} else {
		tok, err := c.token(ctx, "csrf")
		if err != nil {
			return fmt.Errorf("append text: %w", err)
		}
		csrf = tok
		c.cache.Set(csrfKey, csrf, 10*time.Minute)
	}

	var result struct {
		Edit struct {
			Result string `json:"result"`
		} `json:"edit"`
	}
	err := c.call(ctx, http.MethodPost, url.Values{
		"action":     {"edit"},
		"title":      {title},
		"appendtext": {text},
		"summary":    {summary},
		"nocreate":   {"1"},
		"bot":        {"1"},
		"token":      {csrf},
	}, &result)
	if err != nil {
		return fmt.Errorf("append text: %w", err)
	}
	if result.Edit.Result != "Success" {
		return fmt.Errorf("append text: edit result %q", result.Edit.Result)
	}
	return nil
}
