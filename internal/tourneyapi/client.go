package tourneyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cohortclub/berger/internal/util/httputil"
)

type ClientOptions struct {
	Endpoint string
	Token    string
}

type client struct {
	o      ClientOptions
	client *http.Client
}

func NewClient(o ClientOptions, httpClient *http.Client) API {
	return &client{o: o, client: httpClient}
}

func (c *client) setUpRequest(req *http.Request) {
	req.Header.Add("X-Token", c.o.Token)
	req.Header.Add("Content-Type", "application/json")
}

func (c *client) decodeError(rsp *http.Response) error {
	if 200 <= rsp.StatusCode && rsp.StatusCode <= 299 {
		return nil
	}
	var b bytes.Buffer
	_, err := io.Copy(&b, rsp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if rsp.Header.Get("Content-Type") == "application/json" {
		var apiErr *Error
		if err := json.Unmarshal(b.Bytes(), &apiErr); err != nil {
			return fmt.Errorf("unmarshal json: %w", err)
		}
		if apiErr.Code == ErrInvalidCode {
			return fmt.Errorf("bad error json")
		}
		return apiErr
	}
	return httputil.MakeError(rsp.StatusCode, b.String())
}

func doClientRequest[Req any, Rsp any](ctx context.Context, c *client, path string, req *Req) (*Rsp, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	hReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.o.Endpoint+path, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setUpRequest(hReq)
	hRsp, err := c.client.Do(hReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, hRsp.Body)
		_ = hRsp.Body.Close()
	}()
	if err := c.decodeError(hRsp); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	rspBytes, err := io.ReadAll(hRsp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var rsp *Rsp
	if err := json.Unmarshal(rspBytes, &rsp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rsp == nil {
		return nil, fmt.Errorf("response is null")
	}
	return rsp, nil
}

func (c *client) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	return doClientRequest[RegisterRequest, RegisterResponse](ctx, c, "/register", req)
}

func (c *client) WithdrawWaitlist(ctx context.Context, req *WithdrawWaitlistRequest) (*WithdrawWaitlistResponse, error) {
	return doClientRequest[WithdrawWaitlistRequest, WithdrawWaitlistResponse](ctx, c, "/waitlist/withdraw", req)
}

func (c *client) Withdraw(ctx context.Context, req *WithdrawRequest) (*WithdrawResponse, error) {
	return doClientRequest[WithdrawRequest, WithdrawResponse](ctx, c, "/withdraw", req)
}

func (c *client) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	return doClientRequest[SubmitRequest, SubmitResponse](ctx, c, "/submit", req)
}

func (c *client) GetTournament(ctx context.Context, req *GetTournamentRequest) (*GetTournamentResponse, error) {
	return doClientRequest[GetTournamentRequest, GetTournamentResponse](ctx, c, "/tournament", req)
}

func (c *client) GetWaitlist(ctx context.Context, req *GetWaitlistRequest) (*GetWaitlistResponse, error) {
	return doClientRequest[GetWaitlistRequest, GetWaitlistResponse](ctx, c, "/waitlist", req)
}

func (c *client) ListTournaments(ctx context.Context, req *ListTournamentsRequest) (*ListTournamentsResponse, error) {
	return doClientRequest[ListTournamentsRequest, ListTournamentsResponse](ctx, c, "/tournaments", req)
}
