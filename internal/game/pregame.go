package game

import "time"

// ToggleReady flips a player's ready flag. When every seated player is
// ready and the room meets the minimum, the start countdown arms; any
// un-ready or departure cancels it.
func (r *Room) ToggleReady(playerID string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Phase != PhasePreGame && r.Phase != PhaseCountdown {
		return ErrGameStarted
	}
	p, ok := r.Players[playerID]
	if !ok {
		return ErrNotInRoom
	}

	r.Ready[playerID] = !r.Ready[playerID]
	r.logAction(playerID, "toggle_ready", map[string]interface{}{"ready": r.Ready[playerID]})

	if r.allReady() {
		r.armCountdown()
	} else {
		r.cancelCountdown(p.Name + " is no longer ready")
	}
	r.broadcastReadyState()
	r.broadcastUpdate()
	return nil
}

func (r *Room) allReady() bool {
	if len(r.Players) < r.Config.MinPlayers {
		return false
	}
	for id := range r.Players {
		if !r.Ready[id] {
			return false
		}
	}
	return true
}

func (r *Room) broadcastReadyState() {
	r.fireEvent(Event{Type: EventReadyState, Payload: map[string]interface{}{
		"ready": r.Ready,
	}})
}

// armCountdown schedules the game start. The generation counter makes a
// cancelled or superseded timer a no-op when it eventually fires.
// Assumes the room lock is held.
func (r *Room) armCountdown() {
	if r.Phase == PhaseCountdown {
		return
	}
	r.Phase = PhaseCountdown
	r.countdownGen++
	gen := r.countdownGen
	r.countdownEndsAt = time.Now().Add(r.Config.Countdown)

	r.fireEvent(Event{Type: EventCountdownStart, Payload: map[string]interface{}{
		"endsAt":  r.countdownEndsAt.UnixMilli(),
		"seconds": int(r.Config.Countdown.Seconds()),
	}})

	time.AfterFunc(r.Config.Countdown, func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		if r.Phase != PhaseCountdown || r.countdownGen != gen {
			return
		}
		// The population may have shifted under an armed timer.
		if !r.allReady() {
			r.cancelCountdown("not everyone is ready")
			return
		}
		r.startGame()
	})
}

// cancelCountdown disarms a pending start. Safe to call when no
// countdown is running. Assumes the room lock is held.
func (r *Room) cancelCountdown(reason string) {
	if r.Phase != PhaseCountdown {
		return
	}
	r.Phase = PhasePreGame
	r.countdownGen++
	r.fireEvent(Event{Type: EventCountdownStop, Payload: map[string]interface{}{
		"reason": reason,
	}})
}

// startGame rolls for first player and opens the match. Every seated
// player rolls a d6; ties for the highest roll are broken uniformly at
// random. The order rotates so the winner leads while relative seating
// is preserved. Assumes the room lock is held.
func (r *Room) startGame() {
	r.fireEvent(Event{Type: EventDiceRolling})

	rolls := make(map[string]int, len(r.Order))
	best := 0
	for _, id := range r.Order {
		roll := r.rng.Intn(6) + 1
		rolls[id] = roll
		if roll > best {
			best = roll
		}
	}
	var top []string
	for _, id := range r.Order {
		if rolls[id] == best {
			top = append(top, id)
		}
	}
	winnerID := top[r.rng.Intn(len(top))]

	r.fireEvent(Event{Type: EventDiceResults, Payload: map[string]interface{}{
		"rolls":    rolls,
		"winnerId": winnerID,
	}})

	for i, id := range r.Order {
		if id == winnerID {
			r.Order = append(r.Order[i:], r.Order[:i]...)
			break
		}
	}

	r.Ready = make(map[string]bool)
	r.Phase = PhaseInProgress
	r.TurnIndex = 0

	r.log.WithField("room", r.Code).WithField("first", winnerID).Info("game started")
	r.logAction(winnerID, "game_started", map[string]interface{}{"order": r.Order})

	r.fireEvent(Event{Type: EventGameStarted, Payload: map[string]interface{}{
		"firstPlayerId": winnerID,
		"order":         r.Order,
	}})
	r.broadcastUpdate()
}
