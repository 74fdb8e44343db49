package machinectl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"text/tabwriter"
	"time"

	"github.com/edvin/machines/internal/model"
)

// ListFilter narrows `machinectl machines list`.
type ListFilter struct {
	UserID      int64
	ChallengeID int64
	Status      string
	Limit       int
}

// ListMachines fetches every page matching f and writes a table to out.
func ListMachines(ctx context.Context, c *Client, f ListFilter, out io.Writer) (int, error) {
	q := url.Values{}
	if f.UserID > 0 {
		q.Set("user_id", fmt.Sprint(f.UserID))
	}
	if f.ChallengeID > 0 {
		q.Set("challenge_id", fmt.Sprint(f.ChallengeID))
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Limit > 0 {
		q.Set("limit", fmt.Sprint(f.Limit))
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tCHALLENGE\tSTATUS\tIP\tEXPIRES")

	total := 0
	for {
		var page struct {
			Items      []model.Machine `json:"items"`
			NextCursor string          `json:"next_cursor"`
			HasMore    bool            `json:"has_more"`
		}
		if err := c.do(ctx, http.MethodGet, "/api/v1/machines?"+q.Encode(), nil, &page); err != nil {
			return total, fmt.Errorf("list machines: %w", err)
		}

		for _, m := range page.Items {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
				m.ID, m.UserID, m.ChallengeID, m.Status, m.Detail.PublicIP, m.ExpiresAt.Format(time.RFC3339))
		}
		total += len(page.Items)

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		q.Set("cursor", page.NextCursor)
	}
	return total, tw.Flush()
}

// TerminateResult is the server's report of a bulk terminate.
type TerminateResult struct {
	Success    bool     `json:"success"`
	Terminated []string `json:"terminated"`
	Failed     *struct {
		MachineID string `json:"machine_id"`
		Error     string `json:"error"`
	} `json:"failed"`
	NotProcessed []string `json:"not_processed"`
}

// TerminateMachines stops the given machines by ID.
func TerminateMachines(ctx context.Context, c *Client, ids []string) (*TerminateResult, error) {
	var res TerminateResult
	if err := c.do(ctx, http.MethodDelete, "/api/v1/machines", map[string]any{"machine_ids": ids}, &res); err != nil {
		return nil, fmt.Errorf("terminate machines: %w", err)
	}
	return &res, nil
}
