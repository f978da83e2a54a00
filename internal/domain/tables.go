package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOprLog{},
	// Portal
	&User{},
	&Contact{},
	&Message{},
	&Order{},
	&Testimonial{},
	&PricingPlan{},
}
