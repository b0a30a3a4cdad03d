package api

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
)

const maxBodyBytes = 1 << 20

// readFields collects body fields from form-encoded, multipart or JSON bodies.
// JSON scalars are stringified so every content type coerces the same way.
func readFields(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	switch mediaType {
	case "application/json":
		return readJSONFields(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}
}

func readJSONFields(r *http.Request) (url.Values, error) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}

	fields := url.Values{}
	for key, value := range body {
		switch v := value.(type) {
		case nil:
			fields.Set(key, "")
		case string:
			fields.Set(key, v)
		case float64:
			fields.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			fields.Set(key, strconv.FormatBool(v))
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			fields.Set(key, string(raw))
		}
	}
	return fields, nil
}
