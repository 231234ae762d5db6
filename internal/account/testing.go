package account

// SeedBalance is a test helper that overwrites the balance for an account when
// using the in-memory store. The version is left untouched.
func SeedBalance(s Store, id string, amount int64) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		acc := mem.accounts[id]
		acc.Balance = amount
		mem.accounts[id] = acc
	}
}
