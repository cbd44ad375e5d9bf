package filter

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
)

// extractTextFromMessage extracts the text content from an email
// message. For multipart messages it prefers text/plain parts and
// falls back to text/html; the second return reports whether the
// content came from an HTML part.
func extractTextFromMessage(msg *mail.Message) (string, bool, error) {
	contentType := msg.Header.Get("Content-Type")
	isHTML := strings.Contains(strings.ToLower(contentType), "text/html")

	// If it's not a multipart message, just return the body
	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", false, err
		}
		return string(bodyBytes), isHTML, nil
	}

	// Parse the Content-Type header to get the boundary
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// If we can't parse the Content-Type, just return the body
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", false, err
		}
		return string(bodyBytes), false, nil
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", false, err
		}
		return string(bodyBytes), isHTML, nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		// No boundary found, return the body as is
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", false, err
		}
		return string(bodyBytes), false, nil
	}

	mr := multipart.NewReader(msg.Body, boundary)

	var textContent bytes.Buffer
	var htmlContent bytes.Buffer

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// If we encounter an error reading parts, just return what we have so far
			break
		}

		partContentType := strings.ToLower(part.Header.Get("Content-Type"))

		switch {
		case strings.Contains(partContentType, "text/plain"):
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue // Skip this part if we can't read it
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
		case strings.Contains(partContentType, "text/html"):
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			htmlContent.Write(partBytes)
			htmlContent.WriteString("\n")
		}
		// Skip other parts (attachments, nested multiparts)
	}

	if textContent.Len() > 0 {
		return textContent.String(), false, nil
	}
	if htmlContent.Len() > 0 {
		return htmlContent.String(), true, nil
	}

	return "[No text content found in multipart message]", false, nil
}

// decodeEncodedHeader decodes RFC 2047 encoded-word headers such as
// encoded Subject lines.
func decodeEncodedHeader(value string) (string, error) {
	dec := &mime.WordDecoder{}
	return dec.DecodeHeader(value)
}
