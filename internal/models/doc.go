// Package models defines the core domain models for splitledger.
//
// # Model graph
//
//   - Activity: a bounded event (trip, gathering) under which shared
//     expenses are recorded. Locks permanently once settled.
//   - Participant: one user's membership in one activity, carrying a join
//     policy that decides which of the activity's expenses they owe into.
//   - Expense: a signed amount in cents. Negative amounts are expenses,
//     positive amounts are income; only expenses are split.
//   - ExpenseSplit: one participant's computed share of one expense.
//   - SettlementReport: the terminal aggregation of all splits into net
//     per-participant balances.
//
// # Design principles
//
//  1. Amounts are int64 cents everywhere. Split math must be deterministic
//     and reproducible across runs, which rules out float dollars.
//  2. Relationships use ID strings rather than pointers, so the storage
//     layer can load partial graphs without cycles.
//  3. Historical split rows are immutable once their activity locks; the
//     models carry no setters that could bypass that.
package models
