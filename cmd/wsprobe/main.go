// Command wsprobe logs in, opens the realtime socket and prints every event
// delivered to the account until interrupted.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"aurachat/internal/notifications"

	"github.com/gorilla/websocket"
)

func main() {
	base := flag.String("url", "http://localhost:5000", "API base URL")
	login := flag.String("login", "", "username or email")
	password := flag.String("password", "", "password")
	token := flag.String("token", "", "existing JWT (skips login)")
	flag.Parse()

	if *token == "" {
		if *login == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "usage: wsprobe -login <user> -password <pass> | -token <jwt>")
			os.Exit(2)
		}
		var err error
		*token, err = authenticate(*base, *login, *password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	wsURL, err := socketURL(*base, *token)
	if err != nil {
		log.Fatalf("invalid url: %v", err)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("dial failed: %v (status %d)", err, resp.StatusCode)
		}
		log.Fatalf("dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()
	log.Printf("connected to %s", strings.SplitN(wsURL, "?", 2)[0])

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var ev notifications.Event
			if err := conn.ReadJSON(&ev); err != nil {
				log.Printf("read: %v", err)
				return
			}
			payload, _ := json.Marshal(ev.Payload)
			fmt.Printf("%s  %-16s %s\n", ev.CreatedAt.Format(time.RFC3339), ev.Type, payload)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func authenticate(base, login, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": login, "password": password})
	resp, err := http.Post(strings.TrimRight(base, "/")+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var out struct {
		Token string `json:"token"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%d: %s", resp.StatusCode, out.Error)
	}
	return out.Token, nil
}

// socketURL maps http(s)://host to ws(s)://host/api/ws?token=...
func socketURL(base, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path += "/api/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}
