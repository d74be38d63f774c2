package collect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/dataset"
	"github.com/vgc-imitation/collector/battle/localsim"
	"github.com/vgc-imitation/collector/battle/policy"
	"github.com/vgc-imitation/collector/battle/runlog"
	"github.com/vgc-imitation/collector/battle/showdown"
	"github.com/vgc-imitation/collector/battle/teams"
)

// Summary reports the totals of a run.
type Summary struct {
	RunID          string
	Requested      int
	Collected      int
	Timeouts       int
	Rejected       int
	Failed         int
	RecordsWritten int
	RecordsDropped int
	Teacher        string
	Format         string
	ActSize        int
	OutPath        string
}

func (s Summary) String() string {
	return fmt.Sprintf("Collected %d/%d battles in %s (%d records, %d dropped; %d timeouts, %d rejected, %d failed). Teacher=%s format=%s act_size=%d",
		s.Collected, s.Requested, s.OutPath, s.RecordsWritten, s.RecordsDropped,
		s.Timeouts, s.Rejected, s.Failed, s.Teacher, s.Format, s.ActSize)
}

// Collector owns every resource of one run.
type Collector struct {
	plan  *Plan
	rng   *battle.PartitionedRNG
	arena battle.Arena

	recorder      *dataset.Recorder
	teacher       *policy.Recording
	teacherTeam   battle.TeamSource
	opponentTeams *teams.Rotation
	runs          *runlog.Log
	header        *dataset.Header

	hasRun       bool
	teardownOnce sync.Once
}

// NewArena builds the arena a plan asks for: the in-process engine when the
// run is offline, a live-server arena otherwise.
func NewArena(plan *Plan, rng *battle.PartitionedRNG) battle.Arena {
	s := plan.Settings
	if s.IsOffline() {
		cfg := localsim.DefaultConfig(s.Format)
		if s.MaxTurns > 0 {
			cfg.MaxTurns = s.MaxTurns
		}
		return localsim.NewArena(cfg, rng.ForSubsystem(battle.SubsystemLocalSim))
	}
	return showdown.NewArena(showdown.ArenaConfig{
		Server:           plan.Server,
		Format:           s.Format,
		TeacherPassword:  s.Password,
		OpponentPassword: s.OpponentPassword,
	})
}

// NewCollector opens the dataset and the optional run registry. A nil arena
// is replaced by NewArena(plan, ...).
func NewCollector(plan *Plan, arena battle.Arena) (*Collector, error) {
	s := plan.Settings
	rng := battle.NewPartitionedRNG(battle.SeedKey(s.Seed))

	rotation, err := teams.NewRotation(plan.OpponentPool, rng.ForSubsystem(battle.SubsystemTeams))
	if err != nil {
		return nil, fmt.Errorf("opponent teams: %w", err)
	}
	ours, err := teams.NewConstant(plan.OurTeam)
	if err != nil {
		return nil, fmt.Errorf("our team: %w", err)
	}

	recorder, err := dataset.NewRecorder(s.OutPath)
	if err != nil {
		return nil, err
	}

	c := &Collector{
		plan:          plan,
		rng:           rng,
		arena:         arena,
		recorder:      recorder,
		teacherTeam:   ours,
		opponentTeams: rotation,
		header:        dataset.NewHeader(s.Format, plan.TeacherKind.AgentName()),
	}
	c.header.RunID = uuid.New().String()
	c.header.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	for _, k := range plan.OpponentKinds {
		c.header.Opponents = append(c.header.Opponents, string(k))
	}
	c.header.BattlesRequested = s.NBattles

	inner := policy.New(plan.TeacherKind, rng.ForSubsystem(battle.SubsystemPolicy("teacher")))
	c.teacher = policy.NewRecording(inner, plan.TeacherKind.AgentName(), s.Format, recorder)

	if c.arena == nil {
		c.arena = NewArena(plan, rng)
	}

	if s.RunsDB != "" {
		runs, err := runlog.Open(s.RunsDB)
		if err != nil {
			logrus.Warnf("run registry disabled: %v", err)
		} else if _, err := runs.StartRun(runlog.Run{
			ID:        c.header.RunID,
			Format:    s.Format,
			Teacher:   string(plan.TeacherKind),
			Opponents: c.header.Opponents,
			NBattles:  s.NBattles,
			OutPath:   s.OutPath,
		}); err != nil {
			logrus.Warnf("run registry disabled: %v", err)
			runs.Close()
		} else {
			c.runs = runs
		}
	}
	return c, nil
}

// Run plays every requested battle. Failures of single battles are counted
// and logged; only the parent context ends the loop early. Teardown always
// runs, and Run may be called once.
func (c *Collector) Run(ctx context.Context) (sum Summary, err error) {
	if c.hasRun {
		return Summary{}, fmt.Errorf("collector already ran")
	}
	c.hasRun = true

	s := c.plan.Settings
	sum = Summary{
		RunID:     c.header.RunID,
		Requested: s.NBattles,
		Teacher:   string(c.plan.TeacherKind),
		Format:    s.Format,
		ActSize:   c.plan.ActSize,
		OutPath:   s.OutPath,
	}
	defer func() {
		c.teardown(&sum)
		logrus.Info(sum.String())
	}()

	teacher := battle.Contestant{Name: s.Username, Agent: c.teacher, Team: c.teacherTeam}
	kindRNG := c.rng.ForSubsystem(battle.SubsystemOpponents)

	for i := 0; i < s.NBattles; i++ {
		if ctx.Err() != nil {
			logrus.Warnf("collection interrupted after %d of %d battles: %v", i, s.NBattles, ctx.Err())
			break
		}
		kind := chooseKind(c.plan.OpponentKinds, kindRNG)
		name := fmt.Sprintf("opponent-%d", i)
		opponent := battle.Contestant{
			Name:  s.OpponentUsername,
			Agent: policy.New(kind, c.rng.ForSubsystem(battle.SubsystemPolicy(name))),
			Team:  c.opponentTeams,
		}
		if s.IsOffline() {
			opponent.Name = name
		}

		bctx, cancel := context.WithTimeout(ctx, s.BattleTimeout)
		out, err := c.arena.Play(bctx, teacher, opponent)
		cancel()

		row := runlog.Battle{Index: i, OpponentKind: string(kind), BattleTag: out.BattleTag, Turns: out.Turns}
		if out.BattleTag != "" {
			row.Records = c.teacher.WrittenFor(out.BattleTag)
		}
		switch {
		case err == nil:
			sum.Collected++
			row.Status = runlog.StatusCollected
			logrus.Debugf("battle %d: %s vs %s finished in %d turns (won=%t)", i+1, out.BattleTag, kind, out.Turns, out.Won)
		case ctx.Err() != nil:
			logrus.Warnf("battle %d: interrupted: %v", i+1, err)
			row.Status = runlog.StatusFailed
		case errors.Is(err, context.DeadlineExceeded):
			sum.Timeouts++
			row.Status = runlog.StatusTimeout
			logrus.Warnf("battle %d: timeout after %s, probably a rejected team", i+1, s.BattleTimeout)
		case errors.Is(err, battle.ErrTeamRejected):
			sum.Rejected++
			row.Status = runlog.StatusRejected
			logrus.Warnf("battle %d: team rejected: %v", i+1, err)
		default:
			sum.Failed++
			row.Status = runlog.StatusFailed
			logrus.Warnf("battle %d: %v", i+1, err)
		}
		if c.runs != nil {
			if err := c.runs.RecordBattle(sum.RunID, row); err != nil {
				logrus.Warnf("run registry: %v", err)
			}
		}
	}
	return sum, nil
}

// Close releases every resource without running battles. It is a no-op
// after Run.
func (c *Collector) Close() {
	var sum Summary
	c.teardown(&sum)
}

func (c *Collector) teardown(sum *Summary) {
	c.teardownOnce.Do(func() {
		if err := c.arena.Close(); err != nil {
			logrus.Warnf("closing arena: %v", err)
		}
		c.recorder.Close()
		sum.RecordsWritten, sum.RecordsDropped = c.teacher.Counts()

		h := c.header
		h.FinishedAt = time.Now().UTC().Format(time.RFC3339)
		h.BattlesCollected = sum.Collected
		h.Records = sum.RecordsWritten
		h.RecordsDropped = sum.RecordsDropped
		if err := dataset.WriteHeader(h, dataset.HeaderPath(c.plan.Settings.OutPath)); err != nil {
			logrus.Warnf("writing dataset header: %v", err)
		}

		if c.runs != nil {
			notes := fmt.Sprintf("timeouts=%d rejected=%d failed=%d dropped=%d",
				sum.Timeouts, sum.Rejected, sum.Failed, sum.RecordsDropped)
			if err := c.runs.FinishRun(h.RunID, sum.Collected, sum.RecordsWritten, notes); err != nil {
				logrus.Warnf("run registry: %v", err)
			}
			if err := c.runs.Close(); err != nil {
				logrus.Warnf("closing run registry: %v", err)
			}
		}
	})
}
