package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"

	"tradingcore/src/model"
)

// Client is a MarketSnapshotSource backed by a remote snapshot API.
// It implements the same contract as the simulator: (nil, nil) when
// the instrument has no data.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{http: httpClient}
}

func (c *Client) Get(ctx context.Context, symbol string) (*model.MarketSnapshot, error) {
	var snapshot model.MarketSnapshot

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&snapshot).
		SetPathParam("symbol", symbol).
		Get("/snapshots/{symbol}")
	if err != nil {
		logger.WithError(err).WithField("symbol", symbol).Error("snapshot request failed")
		return nil, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}

	if resp.IsError() {
		return nil, fmt.Errorf("snapshot request for %s returned status %d", symbol, resp.StatusCode())
	}

	return &snapshot, nil
}
