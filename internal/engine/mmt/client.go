// Package mmt talks to the MMT knowledge server and manages the MathHub
// archive tree it works on.
package mmt

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Server-side extensions the client calls.
const (
	BuildExtension     = "info.kwarc.mmt.glf.GlfBuildServer"
	ConstructExtension = "info.kwarc.mmt.glf.GlfConstructServer"
	ELPIExtension      = "info.kwarc.mmt.glf.ElpiGenerationServer"

	buildPath     = "glf-build"
	constructPath = "glf-construct"
	elpigenPath   = "glf-elpigen"
	populatePath  = "glf-populate"

	requestTimeout = 5 * time.Minute
)

// ServerError is a failure reported by the server, either as a list of
// errors in a JSON response or as an uncaught exception rendered in XML.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Client sends JSON requests to a running MMT server.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// NewClient creates a client for the server at baseURL (e.g. http://localhost:8080).
func NewClient(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, logger: logger}
}

type response struct {
	IsSuccessful bool            `json:"isSuccessful"`
	Result       json.RawMessage `json:"result"`
	Errors       []string        `json:"errors"`
}

// post sends body to the given path and decodes the standard response envelope.
func (c *Client) post(ctx context.Context, path string, body any) (*response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}
	url := c.baseURL + "/:" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Printf("mmt: POST %s", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error when trying to reach %s: %w", url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	// MMT answers uncaught exceptions with status 200 and an XML page, so
	// the body decides, not the status code.
	var r response
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &ServerError{Message: flattenXML(data)}
	}
	return &r, nil
}

// flattenXML returns the text content of an XML document, one chunk per
// line, or the raw body if it is not XML.
func flattenXML(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var parts []string
	sawElement := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return string(data)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			sawElement = true
		case xml.CharData:
			if s := strings.TrimSpace(string(t)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	if !sawElement {
		return string(data)
	}
	return strings.Join(parts, "\n")
}

func (r *response) err() error {
	return &ServerError{Message: strings.Join(r.Errors, "\n")}
}

// SemanticsURI builds the MathHub URI of a module in an archive.
func SemanticsURI(archive, subdir, name string) string {
	uri := "http://mathhub.info/" + archive
	if subdir != "" {
		uri += "/" + subdir
	}
	return uri + "/" + name
}

// Build compiles a source file in the archive. A failed build without any
// error message is reported as a *ServerError with an empty message.
func (c *Client) Build(ctx context.Context, archive, subdir, file string) error {
	if subdir != "" {
		file = subdir + "/" + file
	}
	r, err := c.post(ctx, buildPath, map[string]any{"archive": archive, "file": file})
	if err != nil {
		return err
	}
	if !r.IsSuccessful {
		return r.err()
	}
	return nil
}

// ConstructOptions tunes semantics construction.
type ConstructOptions struct {
	ToELPI      bool
	DeltaExpand bool
	Simplify    bool
}

// ConstructResult holds one logical expression per requested AST, in
// request order. ELPI is nil unless ELPI output was requested.
type ConstructResult struct {
	MMT      []string `json:"mmt"`
	ELPI     []string `json:"elpi,omitempty"`
	Warnings []string `json:"-"`
}

// Construct runs the semantics construction view over asts.
func (c *Client) Construct(ctx context.Context, asts []string, archive, subdir, view string, opts ConstructOptions) (*ConstructResult, error) {
	r, err := c.post(ctx, constructPath, map[string]any{
		"semanticsView":  SemanticsURI(archive, subdir, view),
		"ASTs":           asts,
		"toElpi":         opts.ToELPI,
		"deltaExpansion": opts.DeltaExpand,
		"simplify":       opts.Simplify,
		"version":        2,
	})
	if err != nil {
		return nil, err
	}
	if !r.IsSuccessful {
		return nil, r.err()
	}
	var res ConstructResult
	if err := json.Unmarshal(r.Result, &res); err != nil {
		return nil, fmt.Errorf("decode construct result: %w", err)
	}
	if len(res.MMT) != len(asts) || (res.ELPI != nil && len(res.ELPI) != len(asts)) {
		return nil, fmt.Errorf("construct returned %d results for %d trees", len(res.MMT), len(asts))
	}
	res.Warnings = r.Errors
	return &res, nil
}

// ELPIOptions tunes ELPI code generation.
type ELPIOptions struct {
	WithMeta bool
	Includes bool
}

// GenerateELPI emits ELPI source for a theory. mode is "types" or "simpleprover".
func (c *Client) GenerateELPI(ctx context.Context, mode, archive, subdir, theory string, opts ELPIOptions) (string, error) {
	r, err := c.post(ctx, elpigenPath, map[string]any{
		"mode":           mode,
		"archive":        archive,
		"subdir":         subdir,
		"theory":         theory,
		"followMeta":     opts.WithMeta,
		"followIncludes": opts.Includes,
	})
	if err != nil {
		return "", err
	}
	if !r.IsSuccessful {
		return "", r.err()
	}
	var code string
	if err := json.Unmarshal(r.Result, &code); err != nil {
		return "", fmt.Errorf("decode elpigen result: %w", err)
	}
	return code, nil
}

// Populate builds a theory from terms and returns its presentation.
func (c *Client) Populate(ctx context.Context, terms []string, archive, subdir, meta, name, mode string) (string, error) {
	r, err := c.post(ctx, populatePath, map[string]any{
		"terms":   terms,
		"archive": archive,
		"subdir":  subdir,
		"meta":    meta,
		"name":    name,
		"mode":    mode,
	})
	if err != nil {
		return "", err
	}
	if !r.IsSuccessful {
		return "", r.err()
	}
	var res struct {
		TheoryPresentation string `json:"theorypresentation"`
	}
	if err := json.Unmarshal(r.Result, &res); err != nil {
		return "", fmt.Errorf("decode populate result: %w", err)
	}
	return res.TheoryPresentation, nil
}
