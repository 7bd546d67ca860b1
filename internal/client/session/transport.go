package session

import (
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

// Transport is the request pipeline: an http.RoundTripper that attaches the
// current access token before dispatch and, on an eligible 401, hands the
// request to the Coordinator for a refresh-and-replay cycle.
//
// The caller's request is never mutated; dispatch always happens on a clone.
type Transport struct {
	// Base is the underlying transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// Store provides the current credentials.
	Store Store

	// Coordinator owns the single-flight refresh protocol.
	Coordinator *Coordinator

	// Log may be nil.
	Log logging.Logger
}

// NewTransport builds a Transport over base (http.DefaultTransport if nil).
func NewTransport(base http.RoundTripper, store Store, coord *Coordinator, log logging.Logger) *Transport {
	if log == nil {
		log = logging.Nop()
	}
	return &Transport{Base: base, Store: store, Coordinator: coord, Log: log}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	rec, err := t.Store.Read(ctx)
	if err != nil {
		return nil, err
	}

	requestID := req.Header.Get(common.RequestIDHeaderName)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	clone := req.Clone(ctx)
	clone.Header.Set(common.RequestIDHeaderName, requestID)
	if rec != nil && rec.AccessToken != "" {
		clone.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+rec.AccessToken)
	}

	resp, err := t.base().RoundTrip(clone)

	switch Classify(clone, resp, err) {
	case ClassNetwork:
		// Propagated untouched; never a session mutation.
		return nil, err

	case ClassAuthEndpoint, ClassTerminal:
		// Propagated untouched. On the terminal path the Coordinator has
		// already torn the session down as a side effect of the failed
		// refresh; passing the response through is all that is left.
		return resp, nil

	case ClassRetryable:
		if req.Body != nil && req.GetBody == nil {
			// The body was consumed and cannot be replayed.
			return resp, nil
		}
		retry := t.retryFunc(req, requestID)
		return t.Coordinator.Do(ctx, resp, retry)

	default:
		return resp, err
	}
}

// retryFunc builds the replay closure handed to the Coordinator. The clone
// carries the retry marker in its context, so a second 401 classifies as
// terminal instead of queueing again.
func (t *Transport) retryFunc(req *http.Request, requestID string) func(string) (*http.Response, error) {
	return func(accessToken string) (*http.Response, error) {
		clone := req.Clone(markRetried(req.Context()))
		clone.Header.Set(common.RequestIDHeaderName, requestID)
		clone.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+accessToken)

		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			clone.Body = body
		}

		return t.base().RoundTrip(clone)
	}
}

// drainBody releases a response that will not be returned to the caller so
// the underlying connection can be reused.
func drainBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
