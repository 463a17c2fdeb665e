package service

import (
	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/pkg/api"
)

func toAPIRoom(r *models.Room) api.Room {
	return api.Room{
		ID:        r.ID,
		Code:      r.Code,
		Name:      r.Name,
		IsLocked:  r.IsLocked,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

func toAPIParticipant(p *models.Participant) api.Participant {
	return api.Participant{
		ID:           p.ID,
		Name:         p.Name,
		Role:         string(p.Role),
		PaymentAlias: p.PaymentAlias,
		JoinedAt:     p.JoinedAt,
	}
}

// roster indexes a room's participants by ID.
type roster map[string]*models.Participant

func newRoster(participants []*models.Participant) roster {
	r := make(roster, len(participants))
	for _, p := range participants {
		r[p.ID] = p
	}
	return r
}

func (r roster) name(id string) string {
	if p, ok := r[id]; ok {
		return p.Name
	}
	return ""
}

func toAPIExpense(e *models.Expense, people roster) api.Expense {
	splits := make([]api.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = api.Split{
			ParticipantID:   s.ParticipantID,
			ParticipantName: people.name(s.ParticipantID),
			Amount:          s.AmountOwed,
		}
	}
	return api.Expense{
		ID:          e.ID,
		RoomID:      e.RoomID,
		PayerID:     e.PayerID,
		PayerName:   people.name(e.PayerID),
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		Splits:      splits,
		CreatedAt:   e.CreatedAt,
	}
}

func toAPISettlement(s *models.Settlement, people roster) api.Settlement {
	out := api.Settlement{
		ID:                s.ID,
		FromParticipantID: s.FromParticipantID,
		FromName:          people.name(s.FromParticipantID),
		ToParticipantID:   s.ToParticipantID,
		ToName:            people.name(s.ToParticipantID),
		Amount:            s.Amount,
		IsPaid:            s.IsPaid,
		PaymentMethod:     string(s.PaymentMethod),
		PaidAt:            s.PaidAt,
	}
	if to, ok := people[s.ToParticipantID]; ok {
		out.ToPaymentAlias = to.PaymentAlias
	}
	return out
}

func toAPISettlements(settlements []*models.Settlement, people roster) []api.Settlement {
	out := make([]api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = toAPISettlement(s, people)
	}
	return out
}
