package daemon

import (
	"context"
	"fmt"
	"strings"

	"wsbtracker/internal/market"
	"wsbtracker/internal/notify"
	"wsbtracker/internal/sentiment"
)

// handleCommands answers every queued operator command
func (d *Daemon) handleCommands(ctx context.Context) {
	m := d.deps.Messenger
	for {
		text, ok := d.deps.Queue.Pop()
		if !ok {
			return
		}
		if m == nil {
			d.log.Warnw("dropping command, messaging disabled", "text", text)
			continue
		}

		d.log.Infow("processing command", "text", text)
		if err := m.Confirm(ctx); err != nil {
			d.log.Warnw("confirming command", "error", err)
		}

		cmd, ok := notify.ParseCommand(text)
		if !ok {
			if err := m.InvalidCommand(ctx); err != nil {
				d.log.Warnw("answering invalid command", "error", err)
			}
			continue
		}

		if err := d.answer(ctx, cmd); err != nil {
			d.log.Errorw("command failed", "command", cmd, "error", err)
			if err := m.Error(ctx); err != nil {
				d.log.Warnw("sending error reply", "error", err)
			}
		}
	}
}

func (d *Daemon) answer(ctx context.Context, cmd notify.Command) error {
	m := d.deps.Messenger
	snap := d.Snapshot()

	switch cmd {
	case notify.CmdHelp:
		return m.Message(ctx, notify.HelpText())

	case notify.CmdStatus:
		agg, err := d.analyze(d.deps.Store.Window())
		if err != nil {
			return err
		}
		s := market.SessionAt(d.deps.Calendar, d.now())
		return m.Message(ctx, fmt.Sprintf("Bull/Bear Ratio: %.2f\nBullish: %d Bearish: %d\nMarket: %s",
			agg.Overall, agg.Bullish, agg.Bearish, s.Phase))

	case notify.CmdTop:
		if len(snap.Top) > 0 {
			return m.TopTickers(ctx, snap.Top)
		}
		agg, err := d.analyze(d.deps.Store.Window())
		if err != nil {
			return err
		}
		var b strings.Builder
		for _, t := range agg.Top(notify.TickerTextLimit) {
			fmt.Fprintf(&b, "%s %d/%d %.2f\n", t.Symbol, t.Bullish, t.Bearish, t.Ratio)
		}
		if b.Len() == 0 {
			return m.Message(ctx, "No tickers mentioned yet.")
		}
		return m.Message(ctx, strings.TrimRight(b.String(), "\n"))

	case notify.CmdEma:
		if snap.Ema == nil {
			points, err := d.deps.Store.LoadEma(d.config.EmaPeriod)
			if err != nil {
				return err
			}
			if len(points) == 0 {
				return m.Message(ctx, "No EMA data yet.")
			}
			last := points[len(points)-1]
			snap.Ema = &last
		}
		return m.Message(ctx, fmt.Sprintf("%s %d-day EMA: %.3f\nBull/Bear Ratio: %.3f\nSignal: %s",
			snap.Ema.Date, d.config.EmaPeriod, snap.Ema.EMA, snap.Ema.Ratio, signalOf(snap)))

	case notify.CmdSqueeze:
		if snap.Watchlist == nil || len(snap.Watchlist.Candidates) == 0 {
			return m.Message(ctx, "No short squeeze data available.")
		}
		var b strings.Builder
		for _, c := range snap.Watchlist.GreatestPain() {
			fmt.Fprintf(&b, "%s %+.2f%% pain %.2f\n", c.Symbol, c.PercentChange, c.ShortsPain)
		}
		return m.Message(ctx, strings.TrimRight(b.String(), "\n"))
	}
	return fmt.Errorf("unhandled command %q", cmd)
}

func signalOf(s Snapshot) string {
	if s.Signal != "" {
		return string(s.Signal)
	}
	if s.Ema != nil {
		return string(sentiment.SignalFor(s.Ema.Ratio, s.Ema.EMA))
	}
	return "n/a"
}
