package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"titandash/internal/domain/models"
	applogger "titandash/pkg/logger"
)

// TickFunc receives live ticker updates from the stream.
type TickFunc func(symbol string, p models.PriceData)

// Stream keeps the in-process price cache warm from the Binance
// miniTicker WebSocket feed. Optional; the REST client remains the
// source of truth when the stream is disabled.
type Stream struct {
	url           string
	symbols       []string
	reconnectWait time.Duration
	l             *applogger.Logger

	conn *websocket.Conn
}

// NewStream creates a Binance WebSocket stream.
func NewStream(url string, symbols []string, reconnectWait time.Duration, l *applogger.Logger) *Stream {
	return &Stream{
		url:           url,
		symbols:       symbols,
		reconnectWait: reconnectWait,
		l:             l,
	}
}

type subscribeMsg struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

type miniTicker struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Close  string `json:"c"`
	Open   string `json:"o"`
	High   string `json:"h"`
	Low    string `json:"l"`
	Volume string `json:"v"`
	Time   int64  `json:"E"`
}

func (s *Stream) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	s.conn = conn

	params := make([]string, 0, len(s.symbols))
	for _, sym := range s.symbols {
		params = append(params, strings.ToLower(sym)+"@miniTicker")
	}
	if err := conn.WriteJSON(subscribeMsg{Method: "SUBSCRIBE", Params: params, ID: 1}); err != nil {
		_ = conn.Close()
		return fmt.Errorf("binance subscribe: %w", err)
	}
	s.l.Info("binance stream connected", applogger.Strings("symbols", s.symbols))
	return nil
}

// Run reads ticker frames and forwards them to onTick until the
// context is canceled, reconnecting on read errors.
func (s *Stream) Run(ctx context.Context, onTick TickFunc) {
	for {
		if err := s.connect(ctx); err != nil {
			s.l.Warn("binance stream connect failed", applogger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.reconnectWait):
				continue
			}
		}

		s.readLoop(ctx, onTick)
		_ = s.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectWait):
		}
	}
}

func (s *Stream) readLoop(ctx context.Context, onTick TickFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, b, err := s.conn.ReadMessage()
		if err != nil {
			s.l.Warn("binance stream read error", applogger.Error(err))
			return
		}

		var t miniTicker
		if err := json.Unmarshal(b, &t); err != nil || t.Event != "24hrMiniTicker" {
			// subscription acks and other frames
			continue
		}

		open := parseFloat(t.Open)
		closePrice := parseFloat(t.Close)
		change := 0.0
		if open > 0 {
			change = (closePrice - open) / open * 100
		}

		onTick(t.Symbol, models.PriceData{
			Price:      closePrice,
			Change24h:  change,
			Volume24h:  parseFloat(t.Volume),
			High24h:    parseFloat(t.High),
			Low24h:     parseFloat(t.Low),
			LastUpdate: t.Time,
		})
	}
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
