package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Small terminal client for the ask endpoint. Streams the NDJSON answer
// and renders plan, source links and answer tokens with distinct colors.

type streamEvent struct {
	Role  string `json:"role"`
	Token string `json:"token"`
}

type createSessionResponse struct {
	Data struct {
		Id string `json:"id"`
	} `json:"data"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000", "API base URL")
	session := flag.String("session", "", "chat session id (created automatically when empty)")
	document := flag.String("document", "", "path to a PDF to attach")
	image := flag.String("image", "", "path to an image to attach")
	flag.Parse()

	query := strings.Join(flag.Args(), " ")
	if query == "" && *document == "" && *image == "" {
		fmt.Fprintln(os.Stderr, "usage: ask [flags] <question>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	client := &http.Client{Timeout: 10 * time.Minute}

	sessionId := *session
	if sessionId == "" {
		var err error
		sessionId, err = createSession(client, *baseURL)
		if err != nil {
			log.Fatalf("create session: %v", err)
		}
		color.New(color.FgHiBlack).Fprintf(os.Stderr, "session %s\n", sessionId)
	}

	body, contentType, err := buildRequestBody(sessionId, query, *document, *image)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}

	resp, err := client.Post(*baseURL+"/api/chat/v1/ask", contentType, body)
	if err != nil {
		log.Fatalf("ask: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Fatalf("ask: status %d: %s", resp.StatusCode, string(msg))
	}

	renderStream(resp.Body)
}

func createSession(client *http.Client, baseURL string) (string, error) {
	resp, err := client.Post(baseURL+"/api/chat/v1/sessions", "application/json", strings.NewReader("{}"))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var parsed createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return parsed.Data.Id, nil
}

func buildRequestBody(sessionId, query, document, image string) (io.Reader, string, error) {
	if document == "" && image == "" {
		payload, err := json.Marshal(map[string]string{
			"chat_session_id": sessionId,
			"query":           query,
		})
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(payload), "application/json", nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("chat_session_id", sessionId); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("query", query); err != nil {
		return nil, "", err
	}
	if err := attachFile(writer, "document", document); err != nil {
		return nil, "", err
	}
	if err := attachFile(writer, "image", image); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func attachFile(writer *multipart.Writer, field, path string) error {
	if path == "" {
		return nil
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

func renderStream(body io.Reader) {
	planColor := color.New(color.FgCyan)
	linkColor := color.New(color.FgYellow)

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}

		switch event.Role {
		case "plan":
			planColor.Println(event.Token)
			fmt.Println()
		case "weblink":
			linkColor.Println(event.Token)
			fmt.Println()
		default:
			fmt.Print(event.Token)
		}
	}
	fmt.Println()

	if err := scanner.Err(); err != nil {
		log.Fatalf("stream: %v", err)
	}
}
