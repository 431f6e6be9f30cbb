package loyalty

import "sync"

type Repository interface {
	// GetAccount returns the account, or a zeroed account when the user has
	// never earned points.
	GetAccount(userID int) (Account, error)
	History(userID, limit int) ([]Transaction, error)
}

// InMemoryRepository for tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[int]Account
	ledger   map[int][]Transaction
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{accounts: map[int]Account{}, ledger: map[int][]Transaction{}}
}

func (r *InMemoryRepository) GetAccount(userID int) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if acc, ok := r.accounts[userID]; ok {
		return acc, nil
	}
	return Account{UserID: userID}, nil
}

func (r *InMemoryRepository) History(userID, limit int) ([]Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	txs := r.ledger[userID]
	// newest first
	out := make([]Transaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, txs[i])
	}
	return out, nil
}

// Accrue mirrors the in-transaction accrual done by order placement.
func (r *InMemoryRepository) Accrue(userID int, orderID int, amount float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	points := PointsFromAmount(amount)
	if points <= 0 {
		return 0
	}
	acc := r.accounts[userID]
	acc.UserID = userID
	acc.Points += points
	acc.TotalEarned += points
	r.accounts[userID] = acc
	oid := orderID
	r.ledger[userID] = append(r.ledger[userID], Transaction{
		TransactionID: len(r.ledger[userID]) + 1,
		UserID:        userID,
		OrderID:       &oid,
		Type:          TypeEarned,
		Points:        points,
		OrderAmount:   amount,
	})
	return points
}
