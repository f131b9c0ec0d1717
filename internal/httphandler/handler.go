// Package httphandler exposes the account, profile, matching and chat
// services over HTTP.
package httphandler

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roomieradar/roomieradar/internal/interfaces"
)

// ChatConnector takes over an upgraded websocket for the duration of the
// connection.
type ChatConnector interface {
	ServeConn(ctx context.Context, conn *websocket.Conn, userID string)
}

type Handler struct {
	userService      interfaces.UserServiceInterface
	profileService   interfaces.ProfileServiceInterface
	matchingService  interfaces.MatchingServiceInterface
	messagingService interfaces.MessagingServiceInterface
	chat             ChatConnector
	upgrader         *websocket.Upgrader
	tokenTTL         time.Duration
	secureCookies    bool
}

// Options configures NewHandler.
type Options struct {
	TokenTTL      time.Duration
	SecureCookies bool
	Upgrader      *websocket.Upgrader
}

func NewHandler(
	userService interfaces.UserServiceInterface,
	profileService interfaces.ProfileServiceInterface,
	matchingService interfaces.MatchingServiceInterface,
	messagingService interfaces.MessagingServiceInterface,
	chat ChatConnector,
	opts Options,
) *Handler {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 30 * 24 * time.Hour
	}
	if opts.Upgrader == nil {
		opts.Upgrader = &websocket.Upgrader{}
	}
	return &Handler{
		userService:      userService,
		profileService:   profileService,
		matchingService:  matchingService,
		messagingService: messagingService,
		chat:             chat,
		upgrader:         opts.Upgrader,
		tokenTTL:         opts.TokenTTL,
		secureCookies:    opts.SecureCookies,
	}
}
