// Package sandbox is a local table authority: a no-limit hold'em table with
// house bots, served over the same websocket protocol agents use against a
// real game.
package sandbox

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/pokeragent/internal/deck"
	"github.com/lox/pokeragent/internal/game"
	"github.com/lox/pokeragent/internal/randutil"
	"github.com/lox/pokeragent/internal/strategy"
)

var (
	ErrNotYourTurn   = errors.New("not your turn")
	ErrIllegalAction = errors.New("illegal action")
	ErrNoHand        = errors.New("no hand in progress")
	ErrTableFull     = errors.New("table is full")
	ErrUnknownPlayer = errors.New("unknown player")
)

const (
	MinSeats = 2
	MaxSeats = 6
)

// TableConfig configures a Table
type TableConfig struct {
	Seats         int
	HouseBots     int
	StartingStack int
	SmallBlind    int
	BigBlind      int
	ShowdownDelay time.Duration
	ActionTimeout time.Duration // 0 waits forever
	Seed          int64
}

// DefaultTableConfig returns a six-seat table with one house bot
func DefaultTableConfig() TableConfig {
	return TableConfig{
		Seats:         MaxSeats,
		HouseBots:     1,
		StartingStack: 1000,
		SmallBlind:    5,
		BigBlind:      10,
		ShowdownDelay: 3 * time.Second,
		ActionTimeout: 30 * time.Second,
	}
}

// Validate checks the table limits
func (c TableConfig) Validate() error {
	switch {
	case c.Seats < MinSeats || c.Seats > MaxSeats:
		return fmt.Errorf("seats must be between %d and %d", MinSeats, MaxSeats)
	case c.HouseBots < 0 || c.HouseBots >= c.Seats:
		return fmt.Errorf("house bots must leave at least one open seat")
	case c.SmallBlind <= 0 || c.BigBlind < c.SmallBlind:
		return fmt.Errorf("blinds must be positive with big blind >= small blind")
	case c.StartingStack < c.BigBlind:
		return fmt.Errorf("starting stack must cover the big blind")
	case c.ShowdownDelay < 0 || c.ActionTimeout < 0:
		return fmt.Errorf("delays cannot be negative")
	}
	return nil
}

type seat struct {
	id        string
	house     bool
	connected bool
	ready     bool

	inHand   bool
	chips    int
	bet      int
	totalBet int
	folded   bool
	allIn    bool
	acted    bool
	role     game.Role
	hole     []deck.Card
}

// canAct reports whether the seat still makes betting decisions this hand
func (s *seat) canAct() bool {
	return s.inHand && !s.folded && !s.allIn
}

// Table runs hands for the seated players. All methods are safe for
// concurrent use.
type Table struct {
	id     string
	cfg    TableConfig
	clock  quartz.Clock
	rng    *rand.Rand
	logger *log.Logger

	// newDeck is swapped in tests to stack the deck
	newDeck func() *deck.Deck

	mu         sync.Mutex
	seats      []*seat
	phase      game.Phase
	handID     string
	hands      int
	deck       *deck.Deck
	board      []deck.Card
	pot        int
	currentBet int
	minRaise   int
	dealer     int
	turn       int
	winners    []game.Winner
	resetTimer *quartz.Timer
	turnTimer  *quartz.Timer
	turnSeq    int
}

// NewTable creates a table with its house bots already seated
func NewTable(id string, cfg TableConfig, clock quartz.Clock, logger *log.Logger) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng, seed := randutil.FromSeed(cfg.Seed)
	t := &Table{
		id:     id,
		cfg:    cfg,
		clock:  clock,
		rng:    rng,
		logger: logger.WithPrefix("table").With("game", id),
		phase:  game.Waiting,
		dealer: -1,
		turn:   -1,
	}
	t.newDeck = func() *deck.Deck { return deck.NewDeck(t.rng) }

	for i := range cfg.HouseBots {
		t.seats = append(t.seats, &seat{
			id:        fmt.Sprintf("house-%d", i+1),
			house:     true,
			connected: true,
			ready:     true,
			chips:     cfg.StartingStack,
		})
	}

	t.logger.Debug("Table created", "seed", seed, "seats", cfg.Seats, "houseBots", cfg.HouseBots)
	return t, nil
}

// ID returns the game id the table serves
func (t *Table) ID() string {
	return t.id
}

// Join seats id, or marks an existing seat connected again. A player joining
// mid-hand sits out until the next one.
func (t *Table) Join(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s := t.seat(id); s != nil {
		s.connected = true
		return nil
	}
	if len(t.seats) >= t.cfg.Seats {
		return ErrTableFull
	}

	t.seats = append(t.seats, &seat{id: id, connected: true, chips: t.cfg.StartingStack})
	t.logger.Info("Player joined", "player", id, "seated", len(t.seats))
	return nil
}

// Leave marks id disconnected. A player who leaves on their turn folds.
func (t *Table) Leave(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.seat(id)
	if s == nil || s.house {
		return
	}
	s.connected = false
	s.ready = false
	t.logger.Info("Player left", "player", id)

	if t.phase.IsBettingStreet() && t.turn >= 0 && t.seats[t.turn] == s {
		turn := t.turn
		_ = t.apply(turn, strategy.Fold, 0)
		t.proceed(turn)
	}
	t.maybeStart()
}

// ToggleReady flips id's ready flag. When every connected player is ready a
// hand starts.
func (t *Table) ToggleReady(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.seat(id)
	if s == nil {
		return ErrUnknownPlayer
	}
	if s.house {
		return nil
	}
	s.ready = !s.ready
	t.logger.Debug("Ready toggled", "player", id, "ready", s.ready)

	t.maybeStart()
	return nil
}

// Act applies one betting action for id. amount is the total target bet for
// RAISE and ignored otherwise.
func (t *Table) Act(id string, kind strategy.Kind, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.phase.IsBettingStreet() {
		return ErrNoHand
	}
	idx := t.index(id)
	if idx < 0 {
		return ErrUnknownPlayer
	}
	if idx != t.turn {
		return ErrNotYourTurn
	}

	if err := t.apply(idx, kind, amount); err != nil {
		return err
	}
	t.proceed(idx)
	return nil
}

// Phase returns the current phase
func (t *Table) Phase() game.Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Hands returns the number of hands started so far
func (t *Table) Hands() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hands
}

// Snapshot returns the table as viewer sees it. Other players' hole cards
// are hidden until showdown; an empty viewer sees only what is public.
func (t *Table) Snapshot(viewer string) *game.SharedState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := &game.SharedState{
		HandID:         t.handID,
		Phase:          t.phase,
		Players:        make(map[string]*game.Participant, len(t.seats)),
		SeatOrder:      make([]string, 0, len(t.seats)),
		TurnIndex:      t.turn,
		Pot:            t.pot,
		CommunityCards: append([]deck.Card{}, t.board...),
		CurrentBet:     t.currentBet,
		MinRaise:       t.minRaise,
		Winners:        append([]game.Winner(nil), t.winners...),
	}

	for _, s := range t.seats {
		p := &game.Participant{
			ID:        s.id,
			Chips:     s.chips,
			Bet:       s.bet,
			TotalBet:  s.totalBet,
			Folded:    s.folded,
			AllIn:     s.allIn,
			Role:      s.role,
			Connected: s.connected,
			Ready:     s.ready,
		}
		switch {
		case len(s.hole) == 0:
		case s.id == viewer, t.phase == game.Showdown && !s.folded:
			p.HoleCards = append([]deck.Card(nil), s.hole...)
		default:
			p.HoleCards = []deck.Card{deck.Hidden, deck.Hidden}
		}
		state.Players[s.id] = p
		state.SeatOrder = append(state.SeatOrder, s.id)
	}
	return state
}

func (t *Table) seat(id string) *seat {
	if i := t.index(id); i >= 0 {
		return t.seats[i]
	}
	return nil
}

func (t *Table) index(id string) int {
	for i, s := range t.seats {
		if s.id == id {
			return i
		}
	}
	return -1
}

// maybeStart deals a new hand when the table is idle and every connected
// player is ready
func (t *Table) maybeStart() {
	if t.phase != game.Waiting {
		return
	}

	players, humans := 0, 0
	for _, s := range t.seats {
		switch {
		case s.house:
			players++
		case s.connected && !s.ready:
			return
		case s.connected:
			players++
			humans++
		}
	}
	if humans == 0 || players < MinSeats {
		return
	}
	t.startHand()
}

func (t *Table) startHand() {
	t.hands++
	t.handID = uuid.NewString()
	t.deck = t.newDeck()
	t.board = nil
	t.pot = 0
	t.winners = nil

	var inHand []int
	for i, s := range t.seats {
		*s = seat{
			id:        s.id,
			house:     s.house,
			connected: s.connected,
			ready:     s.ready,
			chips:     t.cfg.StartingStack,
			role:      game.RoleNone,
			inHand:    s.house || (s.connected && s.ready),
		}
		if s.inHand {
			inHand = append(inHand, i)
		}
	}

	t.dealer = t.nextInHand(t.dealer)
	sb := t.nextInHand(t.dealer)
	if len(inHand) == 2 {
		sb = t.dealer
	}
	bb := t.nextInHand(sb)

	t.seats[t.dealer].role = game.RoleDealer
	t.seats[sb].role = game.RoleSmallBlind
	t.seats[bb].role = game.RoleBigBlind

	t.currentBet = 0
	t.post(sb, t.cfg.SmallBlind)
	t.post(bb, t.cfg.BigBlind)
	t.currentBet = t.cfg.BigBlind
	t.minRaise = t.cfg.BigBlind

	for _, i := range inHand {
		t.seats[i].hole = t.deck.DealN(2)
	}

	t.phase = game.Preflop
	t.logger.Info("Hand started", "hand", t.handID, "players", len(inHand), "dealer", t.seats[t.dealer].id)

	t.proceed(bb)
}

// post commits a forced bet without counting as the seat's action
func (t *Table) post(i, amount int) {
	s := t.seats[i]
	amount = min(amount, s.chips)
	s.chips -= amount
	s.bet += amount
	s.totalBet += amount
	t.pot += amount
	if s.chips == 0 {
		s.allIn = true
	}
}

// nextInHand returns the next seat after i dealt into the hand
func (t *Table) nextInHand(i int) int {
	n := len(t.seats)
	for step := 1; step <= n; step++ {
		j := ((i+step)%n + n) % n
		if t.seats[j].inHand {
			return j
		}
	}
	return -1
}

// nextToAct returns the next seat after i that still owes a decision, or -1
// when the street is complete
func (t *Table) nextToAct(i int) int {
	n := len(t.seats)
	for step := 1; step <= n; step++ {
		j := ((i+step)%n + n) % n
		s := t.seats[j]
		if s.canAct() && (!s.acted || s.bet < t.currentBet) {
			return j
		}
	}
	return -1
}

func (t *Table) apply(i int, kind strategy.Kind, amount int) error {
	s := t.seats[i]
	owed := t.currentBet - s.bet

	switch kind {
	case strategy.Fold:
		s.folded = true
	case strategy.Check:
		if owed > 0 {
			return fmt.Errorf("%w: cannot check facing %d", ErrIllegalAction, owed)
		}
	case strategy.Call:
		t.commit(s, min(owed, s.chips))
	case strategy.Raise:
		minTarget := t.currentBet + t.minRaise
		if amount < minTarget {
			return fmt.Errorf("%w: minimum raise is to %d", ErrIllegalAction, minTarget)
		}
		if amount-s.bet > s.chips {
			return fmt.Errorf("%w: raise to %d exceeds stack", ErrIllegalAction, amount)
		}
		t.commit(s, amount-s.bet)
	case strategy.AllIn:
		if s.chips == 0 {
			return fmt.Errorf("%w: no chips left", ErrIllegalAction)
		}
		t.commit(s, s.chips)
	default:
		return fmt.Errorf("%w: unknown action %v", ErrIllegalAction, kind)
	}

	s.acted = true
	t.logger.Debug("Action", "hand", t.handID, "player", s.id, "action", kind, "amount", amount, "pot", t.pot)
	return nil
}

// commit moves chips from a seat into the pot, reopening the betting when the
// seat's total exceeds the current bet
func (t *Table) commit(s *seat, amount int) {
	s.chips -= amount
	s.bet += amount
	s.totalBet += amount
	t.pot += amount
	if s.chips == 0 {
		s.allIn = true
	}

	if s.bet > t.currentBet {
		t.minRaise = max(t.minRaise, s.bet-t.currentBet)
		t.currentBet = s.bet
		for _, other := range t.seats {
			if other != s {
				other.acted = false
			}
		}
	}
}

// proceed moves the hand forward after the seat at from acted: next player,
// next street or showdown. House bots act inline and disconnected players
// fold.
func (t *Table) proceed(from int) {
	for t.phase.IsBettingStreet() {
		if t.remaining() <= 1 {
			t.finish()
			return
		}

		next := t.nextToAct(from)
		if next < 0 {
			t.nextStreet()
			from = t.dealer
			continue
		}

		t.setTurn(next)
		s := t.seats[next]
		switch {
		case s.house:
			kind := strategy.Check
			if t.currentBet > s.bet {
				kind = strategy.Call
			}
			_ = t.apply(next, kind, 0)
		case !s.connected:
			_ = t.apply(next, strategy.Fold, 0)
		default:
			return
		}
		from = next
	}
}

// remaining counts seats still contesting the pot
func (t *Table) remaining() int {
	n := 0
	for _, s := range t.seats {
		if s.inHand && !s.folded {
			n++
		}
	}
	return n
}

func (t *Table) nextStreet() {
	t.setTurn(-1)
	for _, s := range t.seats {
		s.bet = 0
		s.acted = false
	}
	t.currentBet = 0
	t.minRaise = t.cfg.BigBlind

	actors := 0
	for _, s := range t.seats {
		if s.canAct() {
			actors++
		}
	}

	switch t.phase {
	case game.Preflop:
		t.board = append(t.board, t.deck.DealN(3)...)
	case game.Flop, game.Turn:
		t.board = append(t.board, t.deck.DealN(1)...)
	case game.River:
		t.finish()
		return
	}
	t.phase = t.phase.Next()

	if actors <= 1 {
		// nobody left to bet against: run the board out
		for len(t.board) < 5 {
			t.board = append(t.board, t.deck.DealN(1)...)
		}
		t.finish()
	}
}

// finish settles the pot and schedules the return to WAITING
func (t *Table) finish() {
	t.setTurn(-1)
	t.phase = game.Showdown

	var contenders []int
	for i, s := range t.seats {
		if s.inHand && !s.folded {
			contenders = append(contenders, i)
		}
	}

	winners := contenders
	if len(contenders) > 1 {
		winners = t.bestHands(contenders)
	}

	if len(winners) > 0 {
		share, odd := t.pot/len(winners), t.pot%len(winners)
		for n, i := range winners {
			s := t.seats[i]
			amount := share
			if n == 0 {
				amount += odd
			}
			s.chips += amount
			w := game.Winner{PlayerID: s.id, Amount: amount}
			if len(contenders) > 1 {
				w.Hand = describe(s.hole, t.board)
			}
			t.winners = append(t.winners, w)
		}
	}

	t.logger.Info("Hand finished", "hand", t.handID, "pot", t.pot, "winners", t.winners)

	if t.resetTimer != nil {
		t.resetTimer.Stop()
	}
	handID := t.handID
	t.resetTimer = t.clock.AfterFunc(t.cfg.ShowdownDelay, func() { t.reset(handID) }, "sandbox", "showdown")
}

func (t *Table) bestHands(contenders []int) []int {
	var (
		best    int16
		winners []int
	)
	for _, i := range contenders {
		score, err := scoreSeven(t.seats[i].hole, t.board)
		if err != nil {
			t.logger.Error("Failed to score hand", "player", t.seats[i].id, "error", err)
			continue
		}
		switch {
		case winners == nil || score > best:
			best, winners = score, []int{i}
		case score == best:
			winners = append(winners, i)
		}
	}
	return winners
}

// reset returns the table to WAITING after a showdown
func (t *Table) reset(handID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handID != handID || t.phase != game.Showdown {
		return
	}

	t.phase = game.Waiting
	t.board = nil
	t.pot = 0
	t.currentBet = 0
	t.minRaise = 0
	t.winners = nil
	for _, s := range t.seats {
		s.bet, s.totalBet = 0, 0
		s.folded, s.allIn, s.inHand = false, false, false
		s.hole = nil
		s.role = game.RoleNone
		if !s.house {
			s.ready = false
		}
	}
	t.logger.Debug("Table waiting for players")
	t.maybeStart()
}

// setTurn moves the turn and arms the action timeout for human seats
func (t *Table) setTurn(i int) {
	t.turn = i
	t.turnSeq++
	if t.turnTimer != nil {
		t.turnTimer.Stop()
		t.turnTimer = nil
	}
	if i < 0 || t.seats[i].house || t.cfg.ActionTimeout == 0 {
		return
	}

	seq := t.turnSeq
	t.turnTimer = t.clock.AfterFunc(t.cfg.ActionTimeout, func() { t.timeout(seq) }, "sandbox", "turn")
}

// timeout checks or folds for a player who did not act in time
func (t *Table) timeout(seq int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seq != t.turnSeq || t.turn < 0 || !t.phase.IsBettingStreet() {
		return
	}

	kind := strategy.Fold
	if t.seats[t.turn].bet >= t.currentBet {
		kind = strategy.Check
	}
	t.logger.Warn("Player timed out", "player", t.seats[t.turn].id, "action", kind)
	turn := t.turn
	_ = t.apply(turn, kind, 0)
	t.proceed(turn)
}
