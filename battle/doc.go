// Package battle provides the core data model of the doubles imitation-data collector.
//
// # Reading Guide
//
// Start with these files to understand how a decision point becomes a dataset record:
//   - state.go: DoubleBattle, the mutable per-battle snapshot maintained by battle clients
//   - action.go: the per-slot discrete action space shared by masks and recorded actions
//   - mask.go: legality masks computed by probing every action index
//   - observation.go: the fixed-width observation vector
//
// # Architecture
//
// The battle package defines the data model and the extension-point interfaces;
// implementations live in sub-packages:
//   - battle/policy/: scripted agents (heuristic, max base power, random) and the
//     recording decorator that turns decisions into dataset records
//   - battle/dataset/: dataset record type, JSONL recorder and reader
//   - battle/teams/: team file loading, export/packed format parsing, rotation
//   - battle/dex/: embedded move and species data
//   - battle/showdown/: live battle client speaking the Showdown websocket protocol
//   - battle/localsim/: deterministic in-process battle engine
//   - battle/collect/: the collection run orchestrator
//   - battle/runlog/: sqlite registry of collection runs
//
// # Key Interfaces
//
//   - Agent: choose a DoubleOrder for the current battle state
//   - TeamSource: produce the packed team submitted for the next battle
//   - Arena: play one battle between a teacher and an opponent contestant
package battle
