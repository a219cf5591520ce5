package repository

import (
	"context"
	"time"

	"licensegate/licenseserver/internal/model"
)

func (r *GormRepository) CreateLicense(ctx context.Context, l *model.License) error {
	return mapErr(r.db.WithContext(ctx).Create(l).Error)
}

func (r *GormRepository) GetLicense(ctx context.Context, key string) (model.License, error) {
	var l model.License
	if err := r.db.WithContext(ctx).First(&l, "license_key = ?", key).Error; err != nil {
		return model.License{}, mapErr(err)
	}
	return l, nil
}

func (r *GormRepository) LicenseExists(ctx context.Context, key string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.License{}).Where("license_key = ?", key).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepository) CountLicenses(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.License{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormRepository) ClaimLicense(ctx context.Context, key, ownerID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.License{}).
		Where("license_key = ? AND owner_id IS NULL", key).
		Update("owner_id", ownerID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) ActivateLicense(ctx context.Context, key, ip string, expiresAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.License{}).
		Where("license_key = ? AND expires_at IS NULL", key).
		Updates(map[string]any{
			"expires_at": expiresAt,
			"bound_ip":   ip,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) SuspendLicense(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Model(&model.License{}).Where("license_key = ?", key).Update("suspended", true).Error
}

func (r *GormRepository) DeleteLicense(ctx context.Context, key string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.License{}, "license_key = ?", key)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
