// Package schema declares every table of the pharmacy store once. The owning
// application renders DDL and migrations from it, the read-only mirror checks
// the physical database against it, and the admin registry is built from it.
package schema

import "fmt"

// Kind is the logical type of a column.
type Kind int

const (
	UUID Kind = iota
	BigAutoIncrement
	AutoIncrement
	BigInteger
	Integer
	Varchar
	Decimal
	Date
	Time
	Timestamp
	Boolean
)

func (k Kind) String() string {
	switch k {
	case UUID:
		return "uuid"
	case BigAutoIncrement:
		return "bigautoincrement"
	case AutoIncrement:
		return "autoincrement"
	case BigInteger:
		return "biginteger"
	case Integer:
		return "integer"
	case Varchar:
		return "varchar"
	case Decimal:
		return "decimal"
	case Date:
		return "date"
	case Time:
		return "time"
	case Timestamp:
		return "timestamp"
	case Boolean:
		return "boolean"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Action is the ON DELETE policy of a foreign key.
type Action string

const (
	Cascade Action = "CASCADE"
	SetNull Action = "SET NULL"
)

// Reference is a foreign key from a column to another table's primary key.
type Reference struct {
	Table    string
	Column   string
	OnDelete Action
}

type Column struct {
	Name      string
	Kind      Kind
	Size      int
	Precision int
	Scale     int
	Nullable  bool
	Unique    bool
	// Enum names a domain from models.EnumValues.
	Enum  string
	Check string
	Ref   *Reference
}

type Table struct {
	Name string
	// Entity is the name the table is registered under in the admin console.
	Entity         string
	PrimaryKey     string
	Columns        []Column
	UniqueTogether [][]string
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ForeignKeys returns the columns that reference another table.
func (t *Table) ForeignKeys() []Column {
	var fks []Column
	for _, c := range t.Columns {
		if c.Ref != nil {
			fks = append(fks, c)
		}
	}
	return fks
}

// PrimaryKeyColumn returns the primary key column.
func (t *Table) PrimaryKeyColumn() Column {
	c, _ := t.Column(t.PrimaryKey)
	return c
}

const (
	BrandTable              = "brand"
	CustomerTable           = "customer"
	DoctorConsultationTable = "doctor_consultation"
	MedicineShopTable       = "medicine_shop"
	ProductTable            = "product"
	CartTable               = "cart"
	CartItemsTable          = "cart_items"
	WishlistTable           = "wishlist"
	PaymentTable            = "payment"
)

func varchar(name string, size int) Column {
	return Column{Name: name, Kind: Varchar, Size: size}
}

func nullVarchar(name string, size int) Column {
	return Column{Name: name, Kind: Varchar, Size: size, Nullable: true}
}

var tables = []*Table{
	{
		Name:       BrandTable,
		Entity:     "Brand",
		PrimaryKey: "brand_id",
		Columns: []Column{
			{Name: "brand_id", Kind: UUID},
			varchar("brand_name", 50),
			nullVarchar("brand_location", 50),
			nullVarchar("brand_official_phone", 15),
		},
	},
	{
		Name:       DoctorConsultationTable,
		Entity:     "DoctorConsultation",
		PrimaryKey: "doctor_id",
		Columns: []Column{
			{Name: "doctor_id", Kind: UUID},
			varchar("doctor_name", 50),
			nullVarchar("doctor_address", 250),
			nullVarchar("doctor_phone_no", 15),
			varchar("doctor_qualification", 100),
			varchar("doctor_specialization", 25),
		},
	},
	{
		Name:       MedicineShopTable,
		Entity:     "MedicineShop",
		PrimaryKey: "shop_id",
		Columns: []Column{
			{Name: "shop_id", Kind: UUID},
			varchar("shop_name", 100),
			varchar("shop_address", 250),
			nullVarchar("shop_phone_no", 15),
		},
	},
	{
		Name:       CustomerTable,
		Entity:     "Customer",
		PrimaryKey: "customer_id",
		Columns: []Column{
			{Name: "customer_id", Kind: UUID},
			varchar("name", 50),
			varchar("address", 250),
			nullVarchar("phone_no", 15),
			varchar("pincode", 6),
			{Name: "age", Kind: Integer, Check: "age >= 0"},
			{Name: "gender", Kind: Varchar, Size: 7, Nullable: true, Enum: "Gender"},
			{Name: "doctor_id", Kind: UUID, Nullable: true,
				Ref: &Reference{Table: DoctorConsultationTable, Column: "doctor_id", OnDelete: SetNull}},
		},
	},
	{
		Name:       ProductTable,
		Entity:     "Product",
		PrimaryKey: "product_id",
		Columns: []Column{
			{Name: "product_id", Kind: BigAutoIncrement},
			varchar("product_name", 100),
			varchar("product_type", 25),
			varchar("product_quantity", 20),
			{Name: "product_based_on_gender", Kind: Varchar, Size: 7, Nullable: true, Enum: "Gender"},
			nullVarchar("product_age_group", 20),
			{Name: "product_price", Kind: Decimal, Precision: 10, Scale: 2, Check: "product_price >= 0"},
			{Name: "product_commission_percent", Kind: Decimal, Precision: 5, Scale: 2, Check: "product_commission_percent >= 0"},
			{Name: "product_mfg_date", Kind: Date, Nullable: true},
			{Name: "product_exp_date", Kind: Date, Nullable: true},
			{Name: "product_shop_id", Kind: UUID,
				Ref: &Reference{Table: MedicineShopTable, Column: "shop_id", OnDelete: Cascade}},
			{Name: "product_brand_id", Kind: UUID, Nullable: true,
				Ref: &Reference{Table: BrandTable, Column: "brand_id", OnDelete: Cascade}},
		},
	},
	{
		Name:       CartTable,
		Entity:     "Cart",
		PrimaryKey: "cart_id",
		Columns: []Column{
			{Name: "cart_id", Kind: BigAutoIncrement},
			{Name: "customer_id", Kind: UUID, Unique: true,
				Ref: &Reference{Table: CustomerTable, Column: "customer_id", OnDelete: Cascade}},
			{Name: "delivery_time", Kind: Time, Nullable: true},
		},
	},
	{
		Name:       CartItemsTable,
		Entity:     "CartItems",
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "id", Kind: AutoIncrement},
			{Name: "cart_id", Kind: BigInteger,
				Ref: &Reference{Table: CartTable, Column: "cart_id", OnDelete: Cascade}},
			{Name: "product_id", Kind: BigInteger,
				Ref: &Reference{Table: ProductTable, Column: "product_id", OnDelete: Cascade}},
			{Name: "quantity", Kind: Integer, Check: "quantity > 0"},
		},
		UniqueTogether: [][]string{{"cart_id", "product_id"}},
	},
	{
		Name:       WishlistTable,
		Entity:     "Wishlist",
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "id", Kind: AutoIncrement},
			{Name: "customer_id", Kind: UUID,
				Ref: &Reference{Table: CustomerTable, Column: "customer_id", OnDelete: Cascade}},
			{Name: "product_id", Kind: BigInteger,
				Ref: &Reference{Table: ProductTable, Column: "product_id", OnDelete: Cascade}},
		},
		UniqueTogether: [][]string{{"customer_id", "product_id"}},
	},
	{
		Name:       PaymentTable,
		Entity:     "Payment",
		PrimaryKey: "payment_id",
		Columns: []Column{
			{Name: "payment_id", Kind: UUID},
			{Name: "transaction_id", Kind: Varchar, Size: 50, Unique: true},
			{Name: "total_price", Kind: Decimal, Precision: 10, Scale: 2, Check: "total_price >= 0"},
			{Name: "payment_method", Kind: Varchar, Size: 50, Enum: "PaymentMethod"},
			{Name: "payment_status", Kind: Varchar, Size: 20, Enum: "PaymentStatus"},
			{Name: "payment_date", Kind: Timestamp, Nullable: true},
			{Name: "coupon_applied", Kind: Boolean},
			{Name: "cart_id", Kind: BigInteger,
				Ref: &Reference{Table: CartTable, Column: "cart_id", OnDelete: Cascade}},
			{Name: "customer_id", Kind: UUID,
				Ref: &Reference{Table: CustomerTable, Column: "customer_id", OnDelete: Cascade}},
		},
	},
}

var byName = func() map[string]*Table {
	m := make(map[string]*Table, len(tables))
	for _, t := range tables {
		m[t.Name] = t
	}
	return m
}()

func (t *Table) clone() *Table {
	c := *t
	c.Columns = make([]Column, len(t.Columns))
	for i, col := range t.Columns {
		if col.Ref != nil {
			ref := *col.Ref
			col.Ref = &ref
		}
		c.Columns[i] = col
	}
	c.UniqueTogether = make([][]string, len(t.UniqueTogether))
	for i, group := range t.UniqueTogether {
		c.UniqueTogether[i] = append([]string(nil), group...)
	}
	return &c
}

// Tables returns every table in dependency order: a table only references
// tables that appear before it. The tables are copies; changing them does not
// change the declarations.
func Tables() []*Table {
	out := make([]*Table, len(tables))
	for i, t := range tables {
		out[i] = t.clone()
	}
	return out
}

// Lookup returns a copy of the table with the given name.
func Lookup(name string) (*Table, bool) {
	t, ok := byName[name]
	if !ok {
		return nil, false
	}
	return t.clone(), true
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) *Table {
	t, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("schema: unknown table %q", name))
	}
	return t
}
