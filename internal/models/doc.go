// Package models defines the core domain models for splitroom.
//
// # Models
//
//   - Room: a temporary, code-addressed session where a group shares expenses
//   - Participant: someone in a room (admin, member, or virtual proxy)
//   - Expense: one outlay fronted by a participant
//   - ExpenseSplit: the part of an expense owed by one participant
//   - Settlement: a computed "from pays to" instruction created when a room is locked
//
// # Design Principles
//
// 1. **Rooms own everything**: participants, expenses, splits and settlements
// are deleted together with their room.
// 2. **IDs, not pointers**: relationships are expressed with ID strings.
// 3. **Decimal money**: all amounts are decimal.Decimal with two fractional digits
// at the edges; nothing is stored or computed as float64.
// 4. **Unix timestamps**: times are stored as Unix seconds, zero meaning unset.
package models
