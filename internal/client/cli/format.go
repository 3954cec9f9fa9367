package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

func taskLine(t *models.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s  %s", mark, t.ID, t.Title)
}

func printTask(w io.Writer, t *models.Task) {
	desc := "-"
	if t.Description != nil && *t.Description != "" {
		desc = *t.Description
	}
	completed := "no"
	if t.Completed {
		completed = "yes"
	}

	fmt.Fprintf(w, "ID:          %s\n", t.ID)
	fmt.Fprintf(w, "Title:       %s\n", t.Title)
	fmt.Fprintf(w, "Description: %s\n", desc)
	fmt.Fprintf(w, "Completed:   %s\n", completed)
	fmt.Fprintf(w, "Created:     %s\n", stamp(t.CreatedAt))
	fmt.Fprintf(w, "Updated:     %s\n", stamp(t.UpdatedAt))
}

func printUser(w io.Writer, u *models.User) {
	name := "-"
	if u.Name != nil && *u.Name != "" {
		name = *u.Name
	}
	verified := "no"
	if u.EmailVerified {
		verified = "yes"
	}

	fmt.Fprintf(w, "ID:       %s\n", u.ID)
	fmt.Fprintf(w, "Email:    %s\n", u.Email)
	fmt.Fprintf(w, "Name:     %s\n", name)
	fmt.Fprintf(w, "Verified: %s\n", verified)
	fmt.Fprintf(w, "Joined:   %s\n", stamp(u.CreatedAt))
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
