package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

const maxBodyBytes = 1 << 20

// pushRequest is the decoded body of a push. Every field is optional.
type pushRequest struct {
	URL     string
	WebPath string
	Meta    json.RawMessage // nil when absent
}

// parsePushRequest reads a JSON object body when the content type says
// JSON, and form fields otherwise. Bodies that cannot be decoded yield an
// empty request instead of an error.
func parsePushRequest(r *http.Request) pushRequest {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return pushRequest{}
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case isJSON(mediaType):
		return parseJSONBody(body)
	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return pushRequest{}
		}
		return fromValues(values)
	case mediaType == "multipart/form-data":
		r.Body = io.NopCloser(bytes.NewReader(body))
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return pushRequest{}
		}
		return fromValues(r.PostForm)
	}
	return pushRequest{}
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}

func parseJSONBody(body []byte) pushRequest {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return pushRequest{}
	}

	req := pushRequest{
		URL:     jsonString(fields["url"]),
		WebPath: jsonString(fields["path"]),
	}
	if meta, ok := fields["meta"]; ok && !bytes.Equal(bytes.TrimSpace(meta), []byte("null")) {
		req.Meta = meta
	}
	return req
}

// jsonString returns the value when raw is a JSON string and "" otherwise.
func jsonString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// fromValues takes the first value of each field. A form meta field is
// recorded as a JSON string.
func fromValues(values url.Values) pushRequest {
	req := pushRequest{
		URL:     values.Get("url"),
		WebPath: values.Get("path"),
	}
	if _, ok := values["meta"]; ok {
		if meta, err := json.Marshal(values.Get("meta")); err == nil {
			req.Meta = meta
		}
	}
	return req
}
