package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const voucherCacheTTL = time.Minute

// VoucherService evaluates discount codes. Evaluate is pure; the redemption
// count is only consumed by the order transaction, so a rolled-back order
// never burns a redemption.
type VoucherService struct {
	vouchers    repository.VoucherRepository
	redisClient *redis.Client
}

func NewVoucherService(vouchers repository.VoucherRepository) *VoucherService {
	return &VoucherService{vouchers: vouchers}
}

func (s *VoucherService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// Evaluate returns the voucher and the discount it yields for the subtotal.
// Unknown, inactive, expired or below-minimum codes degrade to a zero
// discount instead of failing; only storage errors propagate.
func (s *VoucherService) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*domain.Voucher, decimal.Decimal, error) {
	if code == "" {
		return nil, decimal.Zero, nil
	}
	v, err := s.vouchers.FindByCode(ctx, code)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if v == nil {
		return nil, decimal.Zero, nil
	}
	return v, v.CalculateDiscount(subtotal, now), nil
}

// CheckCode is the validity probe behind GET /api/vouchers/code/:code.
// Results are cached briefly; the order path never reads this cache.
func (s *VoucherService) CheckCode(ctx context.Context, code string, amount decimal.Decimal, now time.Time) (*domain.Voucher, bool, error) {
	v := s.getVoucherWithCache(ctx, code)
	if v == nil {
		var err error
		v, err = s.vouchers.FindByCode(ctx, code)
		if err != nil {
			return nil, false, err
		}
		if v == nil {
			return nil, false, domain.E(domain.KindNotFound, "voucher not found")
		}
		s.cacheVoucher(ctx, v)
	}

	valid := v.IsValid(now) &&
		(!v.MinOrderAmount.IsPositive() || amount.GreaterThanOrEqual(v.MinOrderAmount))
	return v, valid, nil
}

func (s *VoucherService) ListAvailable(ctx context.Context, now time.Time) ([]domain.Voucher, error) {
	return s.vouchers.FindAvailable(ctx, now)
}

// ListValidForAmount narrows the available set to vouchers whose minimum
// order amount the given subtotal satisfies.
func (s *VoucherService) ListValidForAmount(ctx context.Context, now time.Time, amount decimal.Decimal) ([]domain.Voucher, error) {
	all, err := s.vouchers.FindAvailable(ctx, now)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Voucher, 0, len(all))
	for _, v := range all {
		if !v.MinOrderAmount.IsPositive() || amount.GreaterThanOrEqual(v.MinOrderAmount) {
			out = append(out, v)
		}
	}
	return out, nil
}

// WarmupCache preloads currently available vouchers into redis.
func (s *VoucherService) WarmupCache(ctx context.Context, now time.Time) error {
	if s.redisClient == nil {
		return nil
	}
	available, err := s.vouchers.FindAvailable(ctx, now)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range available {
		v := available[i]
		g.Go(func() error {
			s.cacheVoucher(ctx, &v)
			return nil
		})
	}
	return g.Wait()
}

func (s *VoucherService) getVoucherWithCache(ctx context.Context, code string) *domain.Voucher {
	if s.redisClient == nil {
		return nil
	}
	cached, err := s.redisClient.Get(ctx, voucherCacheKey(code)).Result()
	if err != nil {
		return nil
	}
	var v domain.Voucher
	if err := json.Unmarshal([]byte(cached), &v); err != nil {
		return nil
	}
	return &v
}

func (s *VoucherService) cacheVoucher(ctx context.Context, v *domain.Voucher) {
	if s.redisClient == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal voucher %s for cache: %v", v.Code, err)
		return
	}
	s.redisClient.Set(ctx, voucherCacheKey(v.Code), data, voucherCacheTTL)
}

func voucherCacheKey(code string) string {
	return "voucher:" + code
}
