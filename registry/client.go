package registry

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"
)

// maxAttempts bounds delivery retries for one message.
const maxAttempts = 5

const defaultTimeout = 30 * time.Second

// Client submits HL7 messages to FL SHOTS via its submitSingleMessage SOAP
// operation.
type Client struct {
	URL        string
	Action     string // SOAP header Action field; defaults to URL
	To         string // SOAP header To field; defaults to URL
	HTTPClient *http.Client
	Timeout    time.Duration // per-attempt timeout
}

// NewClient returns a client for the given endpoint.
func NewClient(endpointURL string) *Client {
	return &Client{URL: endpointURL}
}

// submitRequest populates the template to make the XML request.
type submitRequest struct {
	Action     string
	To         string
	Username   string
	Password   string
	HL7Message string
}

var submitTemplate = template.Must(template.New("submit-single-message").Parse(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope" xmlns:iis="http://tempuri.org/InterOp.Service.HL7IISMethods">
  <soap:Header>
    <Header>
      <soap:Action>{{.Action}}</soap:Action>
      <soap:To>{{.To}}</soap:To>
    </Header>
  </soap:Header>
  <soap:Body>
    <iis:submitSingleMessage>
      <iis:username>{{.Username}}</iis:username>
      <iis:password>{{.Password}}</iis:password>
      <iis:hl7Message>{{.HL7Message}}</iis:hl7Message>
    </iis:submitSingleMessage>
  </soap:Body>
</soap:Envelope>
`))

// newSubmitEnvelope returns a correctly formatted XML request for one message.
// Values are escaped here because HL7 text carries XML-significant characters
// such as the & in the MSH encoding characters.
func newSubmitEnvelope(action string, to string, creds Credentials, hl7Message string) ([]byte, error) {
	data := submitRequest{
		Action:     action,
		To:         to,
		Username:   xmlEscape(creds.Username),
		Password:   xmlEscape(creds.Password),
		HL7Message: xmlEscape(hl7Message),
	}
	var buf bytes.Buffer
	if err := submitTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// soapResponse decodes the acknowledgment text out of the SOAP response.
type soapResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Text   string `xml:",chardata"`
			Result string `xml:"submitSingleMessageResult"`
		} `xml:"submitSingleMessageResponse"`
	} `xml:"Body"`
}

func (e *soapResponse) result() string {
	if e.Body.Response.Result != "" {
		return e.Body.Response.Result
	}
	return strings.TrimSpace(e.Body.Response.Text)
}

// Submit performs a single submitSingleMessage call and returns the raw
// acknowledgment text from the response.
func (c *Client) Submit(ctx context.Context, creds Credentials, hl7Message string) (string, error) {
	envelope, err := newSubmitEnvelope(c.action(), c.to(), creds, hl7Message)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(envelope))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", `application/soap+xml; charset="utf-8"`)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("registry: server returned %s", resp.Status)
	}
	var e soapResponse
	if err := xml.Unmarshal(body, &e); err != nil {
		return "", fmt.Errorf("registry: decoding response: %w", err)
	}
	return e.result(), nil
}

// Deliver submits the message, retrying transport failures and unrecognized
// acknowledgments up to the attempt bound. A terminal acknowledgment (AA, AE
// or AR) stops the retries: the registry has already processed the message.
// Returns nil when every attempt is exhausted without a recognized outcome;
// delivery is best-effort and the batch carries on.
func (c *Client) Deliver(ctx context.Context, creds Credentials, hl7Message string, logger zerolog.Logger) *Outcome {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout())
		response, err := c.Submit(attemptCtx, creds, hl7Message)
		cancel()
		if err != nil {
			logger.Error().Err(err).Int("attempt", attempt).Msg("failed to connect to FL SHOTS")
			continue
		}
		outcome := Classify(response)
		switch outcome.Disposition {
		case Accepted:
			logger.Info().Msg("message accepted")
			return &outcome
		case AcceptedWithWarning:
			logger.Warn().Str("detail", outcome.Detail).Msg("message accepted with warnings")
			return &outcome
		case Rejected:
			logger.Error().Str("detail", outcome.Detail).Msg("message rejected")
			return &outcome
		default:
			logger.Warn().Int("attempt", attempt).Str("response", response).Msg("unrecognized acknowledgment")
		}
	}
	return nil
}

func (c *Client) action() string {
	if c.Action != "" {
		return c.Action
	}
	return c.URL
}

func (c *Client) to() string {
	if c.To != "" {
		return c.To
	}
	return c.URL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}
