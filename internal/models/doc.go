// Package models defines the core domain models for WorkPilot.
//
// # Models
//
//   - Group: a chat whose members owe a weekly report
//   - Member: a participant listed on a group's roster
//   - Roster: the ordered member list of one group plus its exclusions
//   - Report: one member's submission for one period
//   - Ledger: all reports of one group for one period
//   - PendingMember: a roster member without a report in a period
//
// Groups and members are identified by the chat platform's numeric ids.
//
// # Ordering
//
// Roster members and ledger reports are kept in slices rather than maps.
// Slice order is insertion order and is what users see in rosters, pending
// lists and reminder mentions, so every mutation must preserve it:
// an upsert replaces an entry in place and a removal keeps the relative
// order of the remaining entries.
package models
