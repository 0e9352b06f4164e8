package service

import (
	"context"
	"fmt"
	"time"

	"bistro/internal/cart"
	"bistro/internal/model"
	"bistro/internal/promo"
	"bistro/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	store     cart.Store
	menuRepo  repository.MenuRepository
	promoRepo repository.PromoRepository
	validator promo.Validator
	now       func() time.Time
	logger    zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	store cart.Store,
	menuRepo repository.MenuRepository,
	promoRepo repository.PromoRepository,
	validator promo.Validator,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		store:     store,
		menuRepo:  menuRepo,
		promoRepo: promoRepo,
		validator: validator,
		now:       time.Now,
		logger:    logger.With().Str("service", "cart").Logger(),
	}
}

// priceCart prices c with its stored promo code. A code that no longer exists is dropped from c.
func priceCart(ctx context.Context, promoRepo repository.PromoRepository, c *model.Cart, now time.Time) (model.CartSummary, *model.PromoCode, error) {
	var code *model.PromoCode
	if c.PromoCode != "" {
		p, err := promoRepo.GetByCode(ctx, c.PromoCode)
		if err != nil {
			return model.CartSummary{}, nil, fmt.Errorf("failed to look up promo code: %w", err)
		}
		if p == nil {
			c.PromoCode = ""
		}
		code = p
	}

	summary := cart.Price(c, code, now)
	if summary.PromoCode == "" {
		code = nil
	}
	return summary, code, nil
}

func (s *cartService) summarize(ctx context.Context, c *model.Cart) (*model.CartSummary, error) {
	summary, _, err := priceCart(ctx, s.promoRepo, c, s.now())
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *cartService) load(ctx context.Context, session string) (*model.Cart, error) {
	c, err := s.store.Get(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}

func (s *cartService) save(ctx context.Context, session string, c *model.Cart) (*model.CartSummary, error) {
	if err := s.store.Save(ctx, session, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.summarize(ctx, c)
}

func (s *cartService) Get(ctx context.Context, session string) (*model.CartSummary, error) {
	c, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, c)
}

func (s *cartService) Add(ctx context.Context, session string, req *model.AddToCartRequest) (*model.CartSummary, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < model.MinLineQuantity || quantity > model.MaxLineQuantity {
		return nil, model.ErrInvalidQuantity
	}

	item, err := s.menuRepo.GetItemByID(ctx, req.MenuItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil {
		return nil, model.ErrMenuItemNotFound
	}
	if !item.IsAvailable {
		return nil, model.ErrItemUnavailable
	}

	unitPrice := item.Price
	var addOn *model.AddOn
	if req.AddOnID != nil {
		var ok bool
		if addOn, ok = item.AddOnByID(*req.AddOnID); !ok {
			return nil, model.ErrInvalidAddOn
		}
		unitPrice = unitPrice.Add(addOn.AdditionalPrice)
	}

	c, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}

	key := model.CartLineKey(item.ID, req.AddOnID)
	if line, ok := c.Line(key); ok {
		line.Quantity += quantity
	} else {
		line := model.CartLine{
			Key:        key,
			MenuItemID: item.ID,
			AddOnID:    req.AddOnID,
			Name:       item.Name,
			UnitPrice:  unitPrice,
			Quantity:   quantity,
			ImageURL:   item.ImageURL,
		}
		if addOn != nil {
			line.AddOnName = addOn.Name
		}
		c.Lines = append(c.Lines, line)
	}

	s.logger.Debug().Str("key", key).Int("quantity", quantity).Msg("added to cart")
	return s.save(ctx, session, c)
}

func (s *cartService) UpdateQuantity(ctx context.Context, session, key string, quantity int) (*model.CartSummary, error) {
	c, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}

	line, ok := c.Line(key)
	if !ok {
		return nil, model.ErrCartLineNotFound
	}

	if quantity <= 0 {
		c.RemoveLine(key)
	} else {
		line.Quantity = quantity
	}

	return s.save(ctx, session, c)
}

func (s *cartService) Remove(ctx context.Context, session, key string) (*model.CartSummary, error) {
	c, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}

	if !c.RemoveLine(key) {
		return nil, model.ErrCartLineNotFound
	}

	return s.save(ctx, session, c)
}

func (s *cartService) Clear(ctx context.Context, session string) error {
	if err := s.store.Delete(ctx, session); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *cartService) ApplyPromo(ctx context.Context, session, code string) (*model.CartSummary, error) {
	p, err := s.validator.Lookup(ctx, code)
	if err != nil {
		s.logger.Debug().Str("promo_code", code).Err(err).Msg("promo code rejected")
		return nil, err
	}

	c, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}

	c.PromoCode = p.Code
	return s.save(ctx, session, c)
}

func (s *cartService) RemovePromo(ctx context.Context, session string) (*model.CartSummary, error) {
	c, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}

	c.PromoCode = ""
	return s.save(ctx, session, c)
}
