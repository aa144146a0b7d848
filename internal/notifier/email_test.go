package notifier

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/cgv-watch/internal/config"
)

// serveSMTP answers one plaintext SMTP session and sends the DATA payload on the returned channel
func serveSMTP(t *testing.T, ln net.Listener) <-chan string {
	t.Helper()
	received := make(chan string, 1)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		reply := func(s string) { conn.Write([]byte(s + "\r\n")) }
		reply("220 fake ESMTP")

		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				reply("250-fake")
				reply("250 AUTH PLAIN")
			case strings.HasPrefix(cmd, "AUTH PLAIN"):
				reply("235 2.7.0 accepted")
			case strings.HasPrefix(cmd, "MAIL FROM"), strings.HasPrefix(cmd, "RCPT TO"):
				reply("250 ok")
			case cmd == "DATA":
				reply("354 go ahead")
				var data strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					data.WriteString(l)
				}
				received <- data.String()
				reply("250 queued")
			case cmd == "QUIT":
				reply("221 bye")
				return
			default:
				reply("502 unsupported")
			}
		}
	}()

	return received
}

func localMail(t *testing.T, ln net.Listener) config.MailConfig {
	t.Helper()
	cfg := testMail
	cfg.Host = "127.0.0.1"
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	return cfg
}

func TestSendSMTP_PlainPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	received := serveSMTP(t, ln)
	cfg := localMail(t, ln)

	msg := buildMessage(cfg, testMessage, time.Now())
	if err := sendSMTP(context.Background(), cfg, msg); err != nil {
		t.Fatalf("sendSMTP() error: %v", err)
	}

	select {
	case data := <-received:
		if !strings.Contains(data, "Message-ID: <"+testMessage.ID+"@cgv-watch>") {
			t.Errorf("server received unexpected data:\n%s", data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server never received the message")
	}
}

func TestSendSMTP_PlainPortHonorsContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	// Accept and stay silent so the client waits for a greeting.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(5 * time.Second)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	started := time.Now()
	err = sendSMTP(ctx, localMail(t, ln), []byte("Subject: x\r\n\r\nbody\r\n"))
	if err == nil {
		t.Fatal("sendSMTP() expected an error from a silent server")
	}
	if elapsed := time.Since(started); elapsed > 3*time.Second {
		t.Errorf("sendSMTP() took %v, want it bounded by the context", elapsed)
	}
}
