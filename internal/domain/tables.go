package domain

var Tables = []interface{}{
	&User{},
	&Product{},
	&Haircut{},
	&CartItem{},
	&ProductTransaction{},
	&TransactionItem{},
	&HaircutTransaction{},
}
