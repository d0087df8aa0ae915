package domain

import "github.com/potonglab/barbershop/internal/transform"

// Flatten relation declarations consumed by the transform package. Each
// entity lists the relations it can expose and their cardinality; the
// flattener never inspects anything beyond these.

func (c *CartItem) FlattenRelations() []transform.Relation {
	return []transform.Relation{
		{Name: "product", Value: c.Product},
	}
}

func (t *ProductTransaction) FlattenRelations() []transform.Relation {
	return []transform.Relation{
		{Name: "user", Value: t.User},
		{Name: "items", Many: true, Value: t.Items},
	}
}

func (i *TransactionItem) FlattenRelations() []transform.Relation {
	return []transform.Relation{
		{Name: "product", Value: i.Product},
	}
}

func (t *HaircutTransaction) FlattenRelations() []transform.Relation {
	return []transform.Relation{
		{Name: "user", Value: t.User},
		{Name: "haircut", Value: t.Haircut},
	}
}
