package hub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/platform/obs"
	"pallet-queue-service/internal/ports"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	allocatePath = "/api/pallets/available"
	palletsPath  = "/api/pallets"
)

// Options configures HTTPPalletClient.
type Options struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration // per attempt; defaults to 10s
	RetryMax int           // transport-level retries per call
}

// HTTPPalletClient implements PalletClient against the hub's REST API.
//
// Answers are read leniently with gjson: a JSON object without a positive
// palletId on allocation means no pallet is free, and a submission fails when the body is
// empty, carries an "error" field or says "ok": false.
//
// The client is safe for concurrent use.
type HTTPPalletClient struct {
	session *retryablehttp.Client
	baseURL string
	token   string
	log     logrus.FieldLogger
}

func NewHTTPPalletClient(opts Options, log logrus.FieldLogger) (*HTTPPalletClient, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("hub client: base url is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryMax < 0 {
		opts.RetryMax = 0
	}
	if log == nil {
		log = obs.Discard()
	}

	session := retryablehttp.NewClient()
	session.HTTPClient = &http.Client{Timeout: opts.Timeout}
	session.RetryMax = opts.RetryMax
	session.RetryWaitMin = 200 * time.Millisecond
	session.RetryWaitMax = 2 * time.Second
	session.CheckRetry = checkRetry
	session.Logger = retryLogger{log: log}
	// Hand the last response back instead of a "giving up" error so the
	// status and body can be classified.
	session.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &HTTPPalletClient{
		session: session,
		baseURL: base,
		token:   opts.Token,
		log:     log,
	}, nil
}

type submitRequest struct {
	Pallet   int                `json:"pallet"`
	Packages []domain.QueueItem `json:"packages"`
}

type appendRequest struct {
	Mode         string             `json:"mode"`
	TargetPallet int                `json:"targetPallet"`
	Append       bool               `json:"append"`
	Packages     []domain.QueueItem `json:"packages"`
}

func (c *HTTPPalletClient) AllocatePallet(ctx context.Context) (_ ports.SubmitResult, err error) {
	defer obs.Time(ctx, c.log, "hub.AllocatePallet")(&err)

	req, err := c.newRequest(ctx, http.MethodGet, allocatePath, nil, "")
	if err != nil {
		return ports.SubmitResult{}, fmt.Errorf("allocate pallet: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return failure(err), fmt.Errorf("allocate pallet: %w", err)
	}

	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return ports.SubmitResult{Outcome: ports.OutcomeFailure, Message: "invalid allocation response"}, nil
	}
	if msg := gjson.GetBytes(body, "error"); msg.Exists() && msg.String() != "" {
		return ports.SubmitResult{Outcome: ports.OutcomeFailure, Message: msg.String()}, nil
	}

	id := gjson.GetBytes(body, "palletId").Int()
	if id <= 0 {
		return ports.SubmitResult{Outcome: ports.OutcomeExhausted, Message: "no pallet available"}, nil
	}
	return ports.SubmitResult{Outcome: ports.OutcomeSuccess, PalletID: int(id)}, nil
}

func (c *HTTPPalletClient) SubmitPackages(ctx context.Context, palletID int, entry domain.QueueEntry) (_ ports.SubmitResult, err error) {
	defer obs.Time(ctx, c.log, "hub.SubmitPackages")(&err)

	req, err := c.newRequest(ctx, http.MethodPost, palletsPath, submitRequest{
		Pallet:   palletID,
		Packages: entry.Packages,
	}, entry.ID)
	if err != nil {
		return ports.SubmitResult{}, fmt.Errorf("submit packages: %w", err)
	}

	return c.send(req, palletID, "submit packages")
}

func (c *HTTPPalletClient) AppendPackages(ctx context.Context, palletID int, entry domain.QueueEntry) (_ ports.SubmitResult, err error) {
	defer obs.Time(ctx, c.log, "hub.AppendPackages")(&err)

	req, err := c.newRequest(ctx, http.MethodPost, palletsPath, appendRequest{
		Mode:         domain.ModeExisting,
		TargetPallet: palletID,
		Append:       true,
		Packages:     entry.Packages,
	}, entry.ID)
	if err != nil {
		return ports.SubmitResult{}, fmt.Errorf("append packages: %w", err)
	}

	return c.send(req, palletID, "append packages")
}

func (c *HTTPPalletClient) send(req *retryablehttp.Request, palletID int, op string) (ports.SubmitResult, error) {
	body, err := c.do(req)
	if err != nil {
		return failure(err), fmt.Errorf("%s pallet=%d: %w", op, palletID, err)
	}
	return classifySubmit(body, palletID), nil
}

// classifySubmit applies the hub's success contract to a 2xx body.
func classifySubmit(body []byte, palletID int) ports.SubmitResult {
	if len(strings.TrimSpace(string(body))) == 0 || !gjson.ValidBytes(body) {
		return ports.SubmitResult{Outcome: ports.OutcomeFailure, PalletID: palletID, Message: "empty or invalid response"}
	}

	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return ports.SubmitResult{Outcome: ports.OutcomeFailure, PalletID: palletID, Message: "unexpected response shape"}
	}
	if msg := res.Get("error"); msg.Exists() && msg.Type != gjson.Null && msg.String() != "" {
		return ports.SubmitResult{Outcome: ports.OutcomeFailure, PalletID: palletID, Message: msg.String()}
	}
	if ok := res.Get("ok"); ok.Exists() && ok.Type == gjson.False {
		return ports.SubmitResult{Outcome: ports.OutcomeFailure, PalletID: palletID, Message: "hub answered ok=false"}
	}
	return ports.SubmitResult{Outcome: ports.OutcomeSuccess, PalletID: palletID}
}

func failure(err error) ports.SubmitResult {
	msg := err.Error()
	var he *httpStatusError
	if errors.As(err, &he) {
		if m := gjson.Get(he.Body, "error"); m.Exists() && m.String() != "" {
			msg = m.String()
		}
	}
	return ports.SubmitResult{Outcome: ports.OutcomeFailure, Message: msg}
}
