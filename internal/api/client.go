// Package api is the remote command client for the service boundary. One
// method per boundary operation; every call is a single atomic request and
// resolves to either a confirmed success or a *RequestError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/HunterLewis000/newspaper-app/internal/model"
)

// RequestError is a non-success response from the service boundary, either a
// transport failure or an explicit success=false payload.
type RequestError struct {
	Op     string
	Status int
	Reason string
}

func (e *RequestError) Error() string {
	if strings.TrimSpace(e.Reason) != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: request failed (status %d)", e.Op, e.Status)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// UserName is attributed on status changes (history entries record the
	// acting user).
	UserName string
}

func NewClient(baseURL, userName string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		UserName:   userName,
	}
}

type successEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(c.UserName) != "" {
		req.Header.Set("X-User-Name", c.UserName)
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return &RequestError{Op: op, Reason: err.Error()}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &RequestError{Op: op, Status: res.StatusCode, Reason: err.Error()}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		var env successEnvelope
		_ = json.Unmarshal(data, &env)
		reason := env.Error
		if reason == "" {
			reason = env.Message
		}
		return &RequestError{Op: op, Status: res.StatusCode, Reason: reason}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &RequestError{Op: op, Status: res.StatusCode, Reason: "bad response: " + err.Error()}
		}
	}
	return nil
}

// doSuccess runs a command whose response is the {success} envelope and maps
// success=false to a *RequestError.
func (c *Client) doSuccess(ctx context.Context, op, method, path string, body any) error {
	var env successEnvelope
	if err := c.do(ctx, op, method, path, body, &env); err != nil {
		return err
	}
	if !env.Success {
		reason := env.Error
		if reason == "" {
			reason = env.Message
		}
		return &RequestError{Op: op, Status: http.StatusOK, Reason: reason}
	}
	return nil
}

// ListArticles fetches the active article list in display order.
func (c *Client) ListArticles(ctx context.Context) ([]model.Article, error) {
	var out struct {
		Articles []model.Article `json:"articles"`
	}
	if err := c.do(ctx, "list articles", http.MethodGet, "/articles", nil, &out); err != nil {
		return nil, err
	}
	return out.Articles, nil
}

// GetArticle fetches one full article record; used on article_activated,
// where the minimal event payload cannot be trusted to carry current fields.
func (c *Client) GetArticle(ctx context.Context, id int64) (model.Article, error) {
	var out model.Article
	err := c.do(ctx, "get article", http.MethodGet, fmt.Sprintf("/article/%d", id), nil, &out)
	return out, err
}

type createArticleResponse struct {
	Success bool          `json:"success"`
	Article model.Article `json:"article"`
}

func (c *Client) CreateArticle(ctx context.Context, title, author, deadline string) (model.Article, error) {
	body := map[string]string{"title": title, "author": author, "deadline": deadline}
	var out createArticleResponse
	if err := c.do(ctx, "create article", http.MethodPost, "/add", body, &out); err != nil {
		return model.Article{}, err
	}
	if !out.Success {
		return model.Article{}, &RequestError{Op: "create article", Status: http.StatusOK}
	}
	return out.Article, nil
}

// UpdateFields persists an edit-save of title/author/deadline.
func (c *Client) UpdateFields(ctx context.Context, id int64, title, author, deadline string) error {
	body := map[string]string{"title": title, "author": author, "deadline": deadline}
	return c.doSuccess(ctx, "update article", http.MethodPost, fmt.Sprintf("/update/%d", id), body)
}

func (c *Client) UpdateCat(ctx context.Context, id int64, cat model.Category) error {
	return c.doSuccess(ctx, "update category", http.MethodPost,
		fmt.Sprintf("/update_cat/%d", id), map[string]model.Category{"cat": cat})
}

func (c *Client) UpdateEditor(ctx context.Context, id int64, editor model.Editor) error {
	return c.doSuccess(ctx, "update editor", http.MethodPost,
		fmt.Sprintf("/update_editor/%d", id), map[string]model.Editor{"editor": editor})
}

func (c *Client) UpdateStatusColor(ctx context.Context, id int64, color model.StatusColor) error {
	return c.doSuccess(ctx, "update status color", http.MethodPost,
		fmt.Sprintf("/update_status_color/%d", id), map[string]model.StatusColor{"color": color})
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	return c.doSuccess(ctx, "update status", http.MethodPost,
		fmt.Sprintf("/update_status/%d", id), map[string]model.Status{"status": status})
}

// StatusHistory fetches the append-only history list, in insertion order.
func (c *Client) StatusHistory(ctx context.Context, id int64) ([]model.StatusHistoryEntry, error) {
	var out struct {
		History []model.StatusHistoryEntry `json:"history"`
	}
	if err := c.do(ctx, "status history", http.MethodGet, fmt.Sprintf("/status_history/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// UpdateOrder persists the full display order, wholesale.
func (c *Client) UpdateOrder(ctx context.Context, order []int64) error {
	return c.doSuccess(ctx, "update order", http.MethodPost,
		"/update_order", map[string][]int64{"order": order})
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.doSuccess(ctx, "delete article", http.MethodPost, fmt.Sprintf("/delete/%d", id), nil)
}

// Archive marks a Published article complete: removed from the active list,
// status retained server-side.
func (c *Client) Archive(ctx context.Context, id int64) error {
	return c.doSuccess(ctx, "archive article", http.MethodPost, fmt.Sprintf("/archive/%d", id), nil)
}

// ListArchived fetches completed articles.
func (c *Client) ListArchived(ctx context.Context) ([]model.Article, error) {
	var out struct {
		Articles []model.Article `json:"articles"`
	}
	if err := c.do(ctx, "list archived", http.MethodGet, "/archived", nil, &out); err != nil {
		return nil, err
	}
	return out.Articles, nil
}

// Activate returns an archived article to the active list.
func (c *Client) Activate(ctx context.Context, id int64) error {
	return c.doSuccess(ctx, "activate article", http.MethodPost, fmt.Sprintf("/activate/%d", id), nil)
}

func (c *Client) Files(ctx context.Context, articleID int64) ([]model.FileAttachment, error) {
	var out struct {
		Files []model.FileAttachment `json:"files"`
	}
	if err := c.do(ctx, "list files", http.MethodGet, fmt.Sprintf("/files/%d", articleID), nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

type uploadResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	File    model.FileAttachment `json:"file"`
}

// UploadFile posts one attachment as multipart form data.
func (c *Client) UploadFile(ctx context.Context, articleID int64, filename string, content io.Reader) (model.FileAttachment, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return model.FileAttachment{}, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return model.FileAttachment{}, err
	}
	if err := w.Close(); err != nil {
		return model.FileAttachment{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/upload/%d", c.BaseURL, articleID), &buf)
	if err != nil {
		return model.FileAttachment{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return model.FileAttachment{}, &RequestError{Op: "upload file", Reason: err.Error()}
	}
	defer res.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil || !out.Success {
		reason := ""
		if err != nil {
			reason = err.Error()
		} else {
			reason = out.Message
		}
		return model.FileAttachment{}, &RequestError{Op: "upload file", Status: res.StatusCode, Reason: reason}
	}
	return out.File, nil
}

func (c *Client) DeleteFile(ctx context.Context, fileID int64) error {
	return c.doSuccess(ctx, "delete file", http.MethodPost, fmt.Sprintf("/delete_file/%d", fileID), nil)
}

// DownloadFile streams one attachment's content. The caller owns the reader.
func (c *Client) DownloadFile(ctx context.Context, fileID int64) (string, io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/download_file/%d", c.BaseURL, fileID), nil)
	if err != nil {
		return "", nil, err
	}
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", nil, &RequestError{Op: "download file", Reason: err.Error()}
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return "", nil, &RequestError{Op: "download file", Status: res.StatusCode}
	}
	name := res.Header.Get("X-Filename")
	return name, res.Body, nil
}
