package store

import (
	"context"
	"fmt"

	"pharmacy-store/internal/models"
	"pharmacy-store/internal/schema"
	"pharmacy-store/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBrand inserts a brand, generating its ID when unset
func (s *Store) CreateBrand(ctx context.Context, b *models.Brand) error {
	if err := models.Validate(b); err != nil {
		return err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	_, err := s.exec(ctx, `
		INSERT INTO brand (brand_id, brand_name, brand_location, brand_official_phone)
		VALUES (?, ?, ?, ?)`,
		b.ID, b.Name, b.Location, b.Phone)
	if err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

// CreateDoctor inserts a doctor consultation, generating its ID when unset
func (s *Store) CreateDoctor(ctx context.Context, d *models.DoctorConsultation) error {
	if err := models.Validate(d); err != nil {
		return err
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	_, err := s.exec(ctx, `
		INSERT INTO doctor_consultation (doctor_id, doctor_name, doctor_address, doctor_phone_no,
			doctor_qualification, doctor_specialization)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Address, d.Phone, d.Qualification, d.Specialization)
	if err != nil {
		return fmt.Errorf("failed to create doctor consultation: %w", err)
	}
	return nil
}

// CreateShop inserts a medicine shop, generating its ID when unset
func (s *Store) CreateShop(ctx context.Context, m *models.MedicineShop) error {
	if err := models.Validate(m); err != nil {
		return err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	_, err := s.exec(ctx, `
		INSERT INTO medicine_shop (shop_id, shop_name, shop_address, shop_phone_no)
		VALUES (?, ?, ?, ?)`,
		m.ID, m.Name, m.Address, m.Phone)
	if err != nil {
		return fmt.Errorf("failed to create medicine shop: %w", err)
	}
	return nil
}

// CreateCustomer inserts a customer, generating its ID when unset
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	ctx, span := util.StartSpan(ctx, "Store.CreateCustomer")
	defer span.End()

	if err := models.Validate(c); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	_, err := s.exec(ctx, `
		INSERT INTO customer (customer_id, name, address, phone_no, pincode, age, gender, doctor_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Address, c.Phone, c.Pincode, c.Age, c.Gender, c.DoctorID)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("Customer created", zap.String("customer_id", c.ID.String()))
	return nil
}

// AssignDoctor points a customer at a doctor consultation, or clears the
// reference when doctorID is not valid.
func (s *Store) AssignDoctor(ctx context.Context, customerID uuid.UUID, doctorID uuid.NullUUID) error {
	n, err := s.exec(ctx, "UPDATE customer SET doctor_id = ? WHERE customer_id = ?", doctorID, customerID)
	if err != nil {
		return fmt.Errorf("failed to assign doctor: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	return nil
}

// CreateProduct inserts a product and sets its generated ID
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	ctx, span := util.StartSpan(ctx, "Store.CreateProduct")
	defer span.End()

	if err := models.Validate(p); err != nil {
		return err
	}

	err := s.insertReturning(ctx, &p.ID, `
		INSERT INTO product (product_name, product_type, product_quantity, product_based_on_gender,
			product_age_group, product_price, product_commission_percent, product_mfg_date,
			product_exp_date, product_shop_id, product_brand_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING product_id`,
		p.Name, p.Type, p.Quantity, p.Gender, p.AgeGroup, p.Price, p.CommissionPercent,
		p.MfgDate, p.ExpDate, p.ShopID, p.BrandID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", zap.Int64("product_id", p.ID))
	return nil
}

// DeleteCustomer removes a customer together with their cart, cart items,
// wishlist entries and payments.
func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return s.deleteByKey(ctx, schema.CustomerTable, id)
}

// DeleteDoctor removes a doctor consultation. Customers pointing at it keep
// their row with doctor_id set to NULL.
func (s *Store) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.deleteByKey(ctx, schema.DoctorConsultationTable, id)
}

// DeleteShop removes a medicine shop and its products.
func (s *Store) DeleteShop(ctx context.Context, id uuid.UUID) error {
	return s.deleteByKey(ctx, schema.MedicineShopTable, id)
}

// DeleteBrand removes a brand and its products.
func (s *Store) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return s.deleteByKey(ctx, schema.BrandTable, id)
}

// DeleteProduct removes a product and every cart item and wishlist entry
// referencing it.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.deleteByKey(ctx, schema.ProductTable, id)
}
