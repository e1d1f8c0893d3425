package match

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/lighthouse/internal/matchproto"
	"github.com/mcoot/lighthouse/internal/metrics"
	"github.com/mcoot/lighthouse/internal/model"
)

// Controller runs decoded match messages against the matchmaker and
// renders the response envelope
type Controller struct {
	directory  *Directory
	matchmaker *Matchmaker
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewController creates a new match Controller
func NewController(directory *Directory, matchmaker *Matchmaker, m *metrics.Metrics, logger *slog.Logger) *Controller {
	return &Controller{
		directory:  directory,
		matchmaker: matchmaker,
		metrics:    m,
		logger:     logger,
	}
}

// Handle decodes raw and applies it on behalf of caller, who connected
// from location. The returned bytes are the full response body.
func (c *Controller) Handle(ctx context.Context, caller model.User, location, raw string) ([]byte, error) {
	msg, err := matchproto.Decode(raw)
	if err != nil {
		typeName := ""
		var de *matchproto.DecodeError
		if errors.As(err, &de) {
			typeName = de.TypeName
		}
		c.logger.Warn("could not decode match message",
			slog.String("user", caller.Username),
			slog.String("type", typeName),
			slog.String("body", raw),
			slog.String("error", err.Error()),
		)
		c.metrics.MatchMessage("undecodable", metrics.OutcomeRejected)
		return nil, err
	}

	c.logger.Debug("match message",
		slog.String("user", caller.Username),
		slog.String("type", string(msg.Kind())),
	)

	body, err := c.apply(ctx, caller, location, msg)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeRejected
	}
	c.metrics.MatchMessage(string(msg.Kind()), outcome)
	return body, err
}

func (c *Controller) apply(ctx context.Context, caller model.User, location string, msg matchproto.Message) ([]byte, error) {
	switch m := msg.(type) {
	case matchproto.UpdateMyPlayerData:
		c.directory.SetLocation(caller.ID, location)
		c.matchmaker.ApplyPlayerUpdate(caller, m.RoomState)

	case matchproto.FindBestRoom:
		if c.directory.LocationCount() < 2 {
			break
		}
		resp, ok := c.matchmaker.FindBestRoom(caller, location)
		if !ok {
			return nil, ErrNoRoomFound
		}
		return matchproto.EncodeOK(resp)

	case matchproto.CreateRoom:
		_, err := c.matchmaker.CreateRoom(ctx, caller, m.TargetSlot(), m.Players)
		if err != nil && !errors.Is(err, ErrWorldEmpty) {
			c.logger.Info("room not created",
				slog.String("host", caller.Username),
				slog.String("error", err.Error()),
			)
			return nil, err
		}

	case matchproto.UpdatePlayersInRoom:
		// accepted, nothing tracked
	}

	return matchproto.EncodeOK(nil)
}
