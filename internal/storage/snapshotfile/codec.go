package snapshotfile

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/order"
	"github.com/ovenline/pizzeria/internal/domain/queue"
)

// Timestamps round-trip at full RFC 3339 nanosecond precision.
const timeLayout = time.RFC3339Nano

func encodeQueueSnapshot(s *queue.Snapshot) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("next_number")
	e.Int64(s.NextNumber)
	e.FieldStart("pending")
	encodeOrders(&e, s.Pending)
	e.FieldStart("history")
	encodeOrders(&e, s.History)
	e.ObjEnd()
	return e.Bytes()
}

func encodeOrders(e *jx.Encoder, orders []*order.Order) {
	e.ArrStart()
	for _, o := range orders {
		encodeOrder(e, o)
	}
	e.ArrEnd()
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("number")
	e.Int64(o.Number)
	e.FieldStart("customer")
	e.ObjStart()
	e.FieldStart("name")
	e.Str(o.Customer.Name)
	e.FieldStart("phone")
	e.Str(o.Customer.Phone)
	e.ObjEnd()
	e.FieldStart("flavor")
	e.Str(o.Flavor)
	e.FieldStart("size")
	e.Str(o.Size)
	e.FieldStart("add_ons")
	encodeStrings(e, o.AddOns.Names())
	e.FieldStart("notes")
	e.Str(o.Notes)
	e.FieldStart("created_at")
	e.Str(o.CreatedAt.Format(timeLayout))
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("prep_minutes")
	e.Int(o.PrepMinutes)
	e.ObjEnd()
}

func encodeStrings(e *jx.Encoder, values []string) {
	e.ArrStart()
	for _, v := range values {
		e.Str(v)
	}
	e.ArrEnd()
}

func decodeQueueSnapshot(data []byte) (*queue.Snapshot, error) {
	snap := &queue.Snapshot{NextNumber: 1}
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "next_number":
			n, err := d.Int64()
			if err != nil {
				return err
			}
			snap.NextNumber = n
			return nil
		case "pending":
			orders, err := decodeOrders(d)
			if err != nil {
				return err
			}
			snap.Pending = orders
			return nil
		case "history":
			orders, err := decodeOrders(d)
			if err != nil {
				return err
			}
			snap.History = orders
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func decodeOrders(d *jx.Decoder) ([]*order.Order, error) {
	var out []*order.Order
	err := d.Arr(func(d *jx.Decoder) error {
		o, err := decodeOrder(d)
		if err != nil {
			return err
		}
		out = append(out, o)
		return nil
	})
	return out, err
}

func decodeOrder(d *jx.Decoder) (*order.Order, error) {
	o := &order.Order{}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "number":
			n, err := d.Int64()
			o.Number = n
			return err
		case "customer":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "name":
					v, err := d.Str()
					o.Customer.Name = v
					return err
				case "phone":
					v, err := d.Str()
					o.Customer.Phone = v
					return err
				default:
					return d.Skip()
				}
			})
		case "flavor":
			v, err := d.Str()
			o.Flavor = v
			return err
		case "size":
			v, err := d.Str()
			o.Size = v
			return err
		case "add_ons":
			names, err := decodeStrings(d)
			if err != nil {
				return err
			}
			o.AddOns = order.NewAddOnSet(names...)
			return nil
		case "notes":
			v, err := d.Str()
			o.Notes = v
			return err
		case "created_at":
			v, err := d.Str()
			if err != nil {
				return err
			}
			t, err := time.Parse(timeLayout, v)
			if err != nil {
				return errors.Wrap(err, "parse created_at")
			}
			o.CreatedAt = t
			return nil
		case "status":
			v, err := d.Str()
			if err != nil {
				return err
			}
			st := order.Status(v)
			if !st.Valid() {
				return errors.Errorf("unknown status %q", v)
			}
			o.Status = st
			return nil
		case "prep_minutes":
			n, err := d.Int()
			o.PrepMinutes = n
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func decodeStrings(d *jx.Decoder) ([]string, error) {
	var out []string
	err := d.Arr(func(d *jx.Decoder) error {
		v, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func encodeCatalogSnapshot(s menu.Snapshot) []byte {
	var e jx.Encoder
	e.ObjStart()

	e.FieldStart("sizes")
	e.ArrStart()
	for _, size := range s.Sizes {
		e.ObjStart()
		e.FieldStart("label")
		e.Str(size.Label)
		e.FieldStart("base_prep_minutes")
		e.Int(size.BasePrepMinutes)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("flavors")
	e.ArrStart()
	for _, f := range s.Flavors {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(f.Name)
		e.FieldStart("ingredients")
		encodeStrings(&e, f.Ingredients)
		e.FieldStart("prices")
		e.ObjStart()
		// Size order keeps the file diffable.
		for _, size := range s.Sizes {
			if p, ok := f.Prices[size.Label]; ok {
				e.FieldStart(size.Label)
				e.Str(p.String())
			}
		}
		e.ObjEnd()
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("add_ons")
	e.ArrStart()
	for _, a := range s.AddOns {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(a.Name)
		e.FieldStart("price")
		e.Str(a.Price.String())
		e.ObjEnd()
	}
	e.ArrEnd()

	e.ObjEnd()
	return e.Bytes()
}

func decodeCatalogSnapshot(data []byte) (menu.Snapshot, error) {
	var snap menu.Snapshot
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "sizes":
			return d.Arr(func(d *jx.Decoder) error {
				var size menu.Size
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "label":
						v, err := d.Str()
						size.Label = v
						return err
					case "base_prep_minutes":
						n, err := d.Int()
						size.BasePrepMinutes = n
						return err
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				snap.Sizes = append(snap.Sizes, size)
				return nil
			})
		case "flavors":
			return d.Arr(func(d *jx.Decoder) error {
				f := menu.Flavor{Prices: make(map[string]decimal.Decimal)}
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "name":
						v, err := d.Str()
						f.Name = v
						return err
					case "ingredients":
						v, err := decodeStrings(d)
						f.Ingredients = v
						return err
					case "prices":
						return d.Obj(func(d *jx.Decoder, label string) error {
							v, err := d.Str()
							if err != nil {
								return err
							}
							p, err := decimal.NewFromString(v)
							if err != nil {
								return errors.Wrapf(err, "price for size %q", label)
							}
							f.Prices[label] = p
							return nil
						})
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				snap.Flavors = append(snap.Flavors, f)
				return nil
			})
		case "add_ons":
			return d.Arr(func(d *jx.Decoder) error {
				var a menu.AddOn
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "name":
						v, err := d.Str()
						a.Name = v
						return err
					case "price":
						v, err := d.Str()
						if err != nil {
							return err
						}
						p, err := decimal.NewFromString(v)
						if err != nil {
							return errors.Wrapf(err, "price for add-on %q", a.Name)
						}
						a.Price = p
						return nil
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				snap.AddOns = append(snap.AddOns, a)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return menu.Snapshot{}, err
	}
	return snap, nil
}
