package registry

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const testMessage = "MSH|^~\\&|MGW36685|Nomi Health, Inc|FL SHOTS|FLDOH|20211102090500||VXU^V04|11712345.678|P|2.4|||ER|AL|\n"

func ackEnvelope(ack string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(ack))
	return `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <submitSingleMessageResponse>
      <submitSingleMessageResult>` + buf.String() + `</submitSingleMessageResult>
    </submitSingleMessageResponse>
  </soap:Body>
</soap:Envelope>`
}

func TestDeliverAccepted(t *testing.T) {
	var calls int
	var received string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		received = string(body)
		fmt.Fprint(w, ackEnvelope("MSH|^~\\&|FLSHOTS\nMSA|AA|11712345.678\n"))
	}))
	defer srv.Close()
	client := NewClient(srv.URL)
	outcome := client.Deliver(context.Background(), Credentials{Username: "user", Password: "pass"}, testMessage, zerolog.Nop())
	if outcome == nil {
		t.Fatal("expected an outcome, got nil")
	}
	if outcome.Disposition != Accepted {
		t.Errorf("expected Accepted, got %s", outcome.Disposition)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
	if !strings.Contains(received, "<iis:username>user</iis:username>") {
		t.Error("request missing username")
	}
	// HL7 encoding characters must be XML-escaped on the wire
	if !strings.Contains(received, "^~\\&amp;") {
		t.Errorf("request does not escape HL7 encoding characters: %q", received)
	}
}

func TestDeliverRejectedStopsRetrying(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, ackEnvelope("MSH|^~\\&|FLSHOTS\nMSA|AR|11712345.678\nERR|Patient not found\n"))
	}))
	defer srv.Close()
	client := NewClient(srv.URL)
	outcome := client.Deliver(context.Background(), Credentials{Username: "user", Password: "pass"}, testMessage, zerolog.Nop())
	if outcome == nil {
		t.Fatal("expected an outcome, got nil")
	}
	if outcome.Disposition != Rejected {
		t.Errorf("expected Rejected, got %s", outcome.Disposition)
	}
	if outcome.Detail != "|Patient not found" {
		t.Errorf("unexpected detail: %q", outcome.Detail)
	}
	if calls != 1 {
		t.Errorf("rejections must not be retried: got %d attempts", calls)
	}
}

func TestDeliverUnrecognizedRetriesToBound(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, ackEnvelope("no acknowledgment here"))
	}))
	defer srv.Close()
	client := NewClient(srv.URL)
	outcome := client.Deliver(context.Background(), Credentials{Username: "user", Password: "pass"}, testMessage, zerolog.Nop())
	if outcome != nil {
		t.Errorf("expected nil outcome after exhausting retries, got %s", outcome.Disposition)
	}
	if calls != maxAttempts {
		t.Errorf("expected %d attempts, got %d", maxAttempts, calls)
	}
}

func TestDeliverTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from the first attempt
	client := NewClient(srv.URL)
	client.Timeout = time.Second
	outcome := client.Deliver(context.Background(), Credentials{Username: "user", Password: "pass"}, testMessage, zerolog.Nop())
	if outcome != nil {
		t.Errorf("expected nil outcome on transport failure, got %s", outcome.Disposition)
	}
}

func TestSubmitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	client := NewClient(srv.URL)
	if _, err := client.Submit(context.Background(), Credentials{Username: "user", Password: "pass"}, testMessage); err == nil {
		t.Error("expected error for HTTP 500 response")
	}
}
