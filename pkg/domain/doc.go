/*
Package domain contains the core domain models of the Turing machine engine.

It defines the transition table (Rule, RuleSet), the head motion (Direction),
the notifications emitted while a machine executes, and the errors shared by the
parser and the runtime. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Rule: one transition (state, symbol) -> (symbol, direction, state).
  - RuleSet: an ordered program of Rules with unique (state, symbol) pairs.
  - Snapshot: a serializable capture of a machine (state, tape, head, steps).
  - MachineHooks: synchronous callbacks fired while a machine steps.
*/
package domain
