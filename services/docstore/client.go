package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"strix/models"
)

var (
	ErrNotConfigured = errors.New("document store not configured")
	// ErrReplaceFailed is returned when the remote document could not be
	// written after retries. The local tier is unaffected by this failure.
	ErrReplaceFailed = errors.New("failed to replace remote document")
)

const (
	requestTimeout  = 15 * time.Second
	replaceAttempts = 3
	replaceDelay    = 500 * time.Millisecond

	// documentName is the fixed name field the hosted store expects on
	// every write of this document.
	documentName = "movies"
)

// Client talks to the hosted JSON document store holding the single shared
// user document. The store exposes no partial updates, so every mutation is
// a whole-document fetch, modify and replace. A process-wide mutex serializes
// writers so concurrent mutations cannot clobber each other's changes.
type Client struct {
	baseURL string
	apiKey  string
	docID   string
	httpc   *http.Client

	writeMu sync.Mutex
}

// NewClient creates a document store client. baseURL is the store root
// without a trailing slash, docID names the shared document.
func NewClient(baseURL, apiKey, docID string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		docID:   docID,
		httpc:   &http.Client{Timeout: requestTimeout},
	}
}

// Configured reports whether the client has enough settings to reach the
// remote store.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.docID != ""
}

// fetchEnvelope tolerates both response shapes the store has served: the
// document directly, or the document wrapped under a "data" field.
type fetchEnvelope struct {
	Data  json.RawMessage              `json:"data"`
	Users map[string]models.UserRecord `json:"users"`
}

// Fetch reads the shared document. Any failure yields an empty document so
// reads degrade to "no remote data" rather than an error page.
func (c *Client) Fetch(ctx context.Context) models.UserDocument {
	if !c.Configured() {
		return models.NewUserDocument()
	}

	url := fmt.Sprintf("%s/public/%s", c.baseURL, c.docID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.NewUserDocument()
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Printf("[docstore] Fetch failed: %v", err)
		return models.NewUserDocument()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[docstore] Fetch returned status %d", resp.StatusCode)
		return models.NewUserDocument()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[docstore] Failed to read fetch response: %v", err)
		return models.NewUserDocument()
	}

	return decodeDocument(body)
}

func decodeDocument(body []byte) models.UserDocument {
	var envelope fetchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Printf("[docstore] Failed to decode document: %v", err)
		return models.NewUserDocument()
	}

	doc := models.NewUserDocument()
	if len(envelope.Data) > 0 {
		var inner models.UserDocument
		if err := json.Unmarshal(envelope.Data, &inner); err != nil {
			log.Printf("[docstore] Failed to decode wrapped document: %v", err)
			return models.NewUserDocument()
		}
		if inner.Users != nil {
			doc.Users = inner.Users
		}
		return doc
	}
	if envelope.Users != nil {
		doc.Users = envelope.Users
	}
	return doc
}

// Replace overwrites the shared document. The write is retried with backoff;
// client errors other than rate limiting abort immediately.
func (c *Client) Replace(ctx context.Context, doc models.UserDocument) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]any{
		"name": documentName,
		"data": doc,
	})
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	url := fmt.Sprintf("%s/api/documents/%s", c.baseURL, c.docID)

	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			if c.apiKey != "" {
				req.Header.Set("X-API-Key", c.apiKey)
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			statusErr := fmt.Errorf("document store returned status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return retry.Unrecoverable(statusErr)
			}
			return statusErr
		},
		retry.Attempts(replaceAttempts),
		retry.Delay(replaceDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.Printf("[docstore] Replace failed: %v", err)
		return fmt.Errorf("%w: %v", ErrReplaceFailed, err)
	}
	return nil
}

// Mutate applies fn to a fresh copy of the document and writes the result
// back. Writers are serialized within the process. If fn returns an error
// the document is left untouched.
func (c *Client) Mutate(ctx context.Context, fn func(doc *models.UserDocument) error) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	doc := c.Fetch(ctx)
	if err := fn(&doc); err != nil {
		return err
	}
	return c.Replace(ctx, doc)
}
