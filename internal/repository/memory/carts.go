package memory

import (
	"context"
	"fmt"
	"slices"

	"vatshop/internal/domain"
	"vatshop/internal/repository/cart"

	"github.com/google/uuid"
)

type cartRepo struct {
	sh *shared
	tx bool
}

// load returns a copy of the cart with its lines. Callers must hold mu.
func (r *cartRepo) load(id string) (*domain.Cart, error) {
	st := r.sh.st
	c, ok := st.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.Lines = slices.Clone(st.cartLines[id])
	return &c, nil
}

// activeFor returns the id of the active cart of accountID. Callers must hold mu.
func (r *cartRepo) activeFor(accountID string) (string, bool) {
	for id, c := range r.sh.st.carts {
		if c.IsActive && c.OwnedBy(accountID) {
			return id, true
		}
	}
	return "", false
}

// insert creates an active cart. Callers must hold mu for writing.
func (r *cartRepo) insert(accountID *string) (*domain.Cart, error) {
	if accountID != nil {
		if _, ok := r.activeFor(*accountID); ok {
			return nil, domain.ErrAlreadyExists
		}
		id := *accountID
		accountID = &id
	}
	c := domain.Cart{
		ID:        uuid.NewString(),
		AccountID: accountID,
		IsActive:  true,
		CreatedAt: r.sh.now(),
	}
	r.sh.st.carts[c.ID] = c
	return &c, nil
}

func (r *cartRepo) Create(ctx context.Context, in cart.CreateCartInput) (*domain.Cart, error) {
	defer r.sh.lock(r.tx)()
	return r.insert(in.AccountID)
}

func (r *cartRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	defer r.sh.rlock(r.tx)()
	return r.load(id)
}

func (r *cartRepo) GetForUpdate(ctx context.Context, id string) (*domain.Cart, error) {
	return r.GetByID(ctx, id)
}

func (r *cartRepo) GetActiveByAccount(ctx context.Context, accountID string) (*domain.Cart, error) {
	defer r.sh.rlock(r.tx)()

	id, ok := r.activeFor(accountID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.load(id)
}

func (r *cartRepo) GetOrCreateActiveByAccount(ctx context.Context, accountID string) (*domain.Cart, error) {
	defer r.sh.lock(r.tx)()

	if id, ok := r.activeFor(accountID); ok {
		return r.load(id)
	}
	return r.insert(&accountID)
}

func (r *cartRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Cart, error) {
	st := r.sh.st
	defer r.sh.rlock(r.tx)()

	for id, c := range st.carts {
		if c.PaymentIntentID != nil && *c.PaymentIntentID == intentID {
			return r.load(id)
		}
	}
	return nil, domain.ErrNotFound
}

func (r *cartRepo) AddLine(ctx context.Context, cartID string, productID *string, snapshot domain.LineSnapshot, quantity int) (*domain.LineItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("cart line quantity %d: %w", quantity, domain.ErrValidation)
	}
	st := r.sh.st
	defer r.sh.lock(r.tx)()

	if _, ok := st.carts[cartID]; !ok {
		return nil, domain.ErrNotFound
	}
	if productID != nil {
		id := *productID
		productID = &id
	}
	line := domain.LineItem{
		ID:        uuid.NewString(),
		OwnerID:   cartID,
		ProductID: productID,
		Snapshot:  snapshot,
		Quantity:  quantity,
		CreatedAt: r.sh.now(),
	}
	st.cartLines[cartID] = append(st.cartLines[cartID], line)
	st.lineOwner[line.ID] = cartID
	return &line, nil
}

// mutateLine applies fn to the line with lineID. Callers must hold mu for writing.
func (r *cartRepo) mutateLine(lineID string, fn func(l *domain.LineItem)) error {
	st := r.sh.st
	cartID, ok := st.lineOwner[lineID]
	if !ok {
		return domain.ErrNotFound
	}
	lines := slices.Clone(st.cartLines[cartID])
	for i := range lines {
		if lines[i].ID == lineID {
			fn(&lines[i])
			st.cartLines[cartID] = lines
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *cartRepo) UpdateLine(ctx context.Context, lineID string, snapshot domain.LineSnapshot, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("cart line quantity %d: %w", quantity, domain.ErrValidation)
	}
	defer r.sh.lock(r.tx)()
	return r.mutateLine(lineID, func(l *domain.LineItem) {
		l.Snapshot = snapshot
		l.Quantity = quantity
	})
}

func (r *cartRepo) SetLineQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("cart line quantity %d: %w", quantity, domain.ErrValidation)
	}
	defer r.sh.lock(r.tx)()
	return r.mutateLine(lineID, func(l *domain.LineItem) { l.Quantity = quantity })
}

func (r *cartRepo) DeleteLine(ctx context.Context, lineID string) error {
	st := r.sh.st
	defer r.sh.lock(r.tx)()

	cartID, ok := st.lineOwner[lineID]
	if !ok {
		return domain.ErrNotFound
	}
	st.cartLines[cartID] = slices.DeleteFunc(slices.Clone(st.cartLines[cartID]), func(l domain.LineItem) bool {
		return l.ID == lineID
	})
	delete(st.lineOwner, lineID)
	return nil
}

// mutateCart applies fn to the stored cart. Callers must hold mu for writing.
func (r *cartRepo) mutateCart(cartID string, fn func(c *domain.Cart) error) error {
	st := r.sh.st
	c, ok := st.carts[cartID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := fn(&c); err != nil {
		return err
	}
	st.carts[cartID] = c
	return nil
}

func (r *cartRepo) UpdateDetails(ctx context.Context, cartID string, contact domain.Contact, address domain.Address) error {
	defer r.sh.lock(r.tx)()
	return r.mutateCart(cartID, func(c *domain.Cart) error {
		c.Contact = contact
		c.Address = address
		return nil
	})
}

func (r *cartRepo) SetPaymentIntent(ctx context.Context, cartID, intentID string) error {
	st := r.sh.st
	defer r.sh.lock(r.tx)()

	for id, c := range st.carts {
		if id != cartID && c.PaymentIntentID != nil && *c.PaymentIntentID == intentID {
			return domain.ErrAlreadyExists
		}
	}
	return r.mutateCart(cartID, func(c *domain.Cart) error {
		c.PaymentIntentID = &intentID
		return nil
	})
}

func (r *cartRepo) Deactivate(ctx context.Context, cartID string) error {
	defer r.sh.lock(r.tx)()
	return r.mutateCart(cartID, func(c *domain.Cart) error {
		if !c.IsActive {
			return domain.ErrCartInactive
		}
		c.IsActive = false
		return nil
	})
}
