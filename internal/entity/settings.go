package entity

// MergeSettings overlays raw on DefaultSettings field by field.
// Missing or null values keep their default, an explicit empty string clears the
// field. Unknown keys are ignored.
func MergeSettings(raw map[string]any) Settings {
	s := DefaultSettings()

	mergeSection(raw, "hero", map[string]*string{
		"title":     &s.Hero.Title,
		"subtitle":  &s.Hero.Subtitle,
		"cta_label": &s.Hero.CTALabel,
	})

	mergeSection(raw, "contact", map[string]*string{
		"phone":             &s.Contact.Phone,
		"email":             &s.Contact.Email,
		"address":           &s.Contact.Address,
		"whatsapp_url":      &s.Contact.WhatsAppURL,
		"instagram_url":     &s.Contact.InstagramURL,
		"facebook_url":      &s.Contact.FacebookURL,
		"tiktok_url":        &s.Contact.TikTokURL,
		"google_review_url": &s.Contact.GoogleReviewURL,
		"booking_url":       &s.Contact.BookingURL,
	})

	mergeSection(raw, "reservation", map[string]*string{
		"title": &s.Reservation.Title,
		"text":  &s.Reservation.Text,
		"image": &s.Reservation.Image,
	})

	return s
}

// OverlaySettings applies the sections present in patch on top of base.
// Fields missing from patch keep the value of base.
func OverlaySettings(base Settings, patch map[string]any) Settings {
	merged := ToRaw(base)

	for _, section := range []string{"hero", "contact", "reservation"} {
		p, ok := patch[section].(map[string]any)
		if !ok {
			continue
		}

		dst, _ := merged[section].(map[string]any)
		if dst == nil {
			dst = map[string]any{}
			merged[section] = dst
		}

		for k, v := range p {
			dst[k] = v
		}
	}

	return MergeSettings(merged)
}

func mergeSection(raw map[string]any, name string, fields map[string]*string) {
	section, ok := raw[name].(map[string]any)
	if !ok {
		return
	}

	for key, dst := range fields {
		if v, present := section[key]; present && v != nil {
			*dst = str(section, key)
		}
	}
}
