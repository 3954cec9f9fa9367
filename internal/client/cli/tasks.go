package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

// List prints the caller's tasks, oldest first.
//
//	list [-done | -pending]
func (a *App) List(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	onlyDone := fs.Bool("done", false, "only completed tasks")
	onlyPending := fs.Bool("pending", false, "only open tasks")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: list [-done | -pending]: %w", err)
	}
	if *onlyDone && *onlyPending {
		return errors.New("usage: list [-done | -pending]: flags are exclusive")
	}

	return a.guarded(ctx, func() error {
		tasks, err := a.client.ListTasks(ctx)
		if err != nil {
			return err
		}

		shown := 0
		for _, t := range tasks {
			if (*onlyDone && !t.Completed) || (*onlyPending && t.Completed) {
				continue
			}
			a.printf("%s\n", taskLine(t))
			shown++
		}
		if shown == 0 {
			a.printf("No tasks\n")
		}
		return nil
	})
}

// Add creates a task.
//
//	add [-d description] [-done] [title words...]
//
// Without a title both title and description are prompted for.
func (a *App) Add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	desc := fs.String("d", "", "description")
	done := fs.Bool("done", false, "create as completed")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: add [-d description] [-done] <title>: %w", err)
	}

	return a.guarded(ctx, func() error {
		title := strings.Join(fs.Args(), " ")
		if title == "" {
			var err error
			if title, err = getSimpleText(a.reader, "Enter title", a.out); err != nil {
				return err
			}
			if *desc == "" {
				if *desc, err = getSimpleText(a.reader, "Enter description (optional)", a.out); err != nil {
					return err
				}
			}
		}

		in := models.NewTask{Title: title, Completed: *done}
		if *desc != "" {
			in.Description = desc
		}

		t, err := a.client.CreateTask(ctx, in)
		if err != nil {
			return err
		}
		a.printf("Created %s\n", taskLine(t))
		return nil
	})
}

// Show prints one task in full.
//
//	show <id>
func (a *App) Show(ctx context.Context, args []string) error {
	return a.guarded(ctx, func() error {
		id, err := a.taskID(args)
		if err != nil {
			return err
		}
		t, err := a.client.GetTask(ctx, id)
		if err != nil {
			return err
		}
		printTask(a.out, t)
		return nil
	})
}

// Update changes only the fields given on the command line.
//
//	update <id> [-t title] [-d description] [-clear] [-done | -pending]
func (a *App) Update(ctx context.Context, args []string) error {
	id, rest := leadingID(args)

	fs := newFlagSet("update")
	title := fs.String("t", "", "new title")
	desc := fs.String("d", "", "new description")
	clearDesc := fs.Bool("clear", false, "remove the description")
	done := fs.Bool("done", false, "mark completed")
	pending := fs.Bool("pending", false, "mark not completed")
	if err := fs.Parse(rest); err != nil {
		return fmt.Errorf("usage: update <id> [-t title] [-d description] [-clear] [-done | -pending]: %w", err)
	}
	if id == "" {
		id = fs.Arg(0)
	}

	var patch models.TaskPatch
	var conflict error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			patch.Title = title
		case "d":
			patch.Description = desc
		}
	})
	if *clearDesc {
		if patch.Description != nil {
			conflict = errors.New("-d and -clear are exclusive")
		}
		empty := ""
		patch.Description = &empty
	}
	if *done && *pending {
		conflict = errors.New("-done and -pending are exclusive")
	}
	if *done || *pending {
		completed := *done
		patch.Completed = &completed
	}
	if conflict != nil {
		return conflict
	}
	if patch.IsEmpty() {
		return fmt.Errorf("%w, use -t, -d, -clear, -done or -pending", errNothingToDo)
	}

	return a.guarded(ctx, func() error {
		resolved, err := a.taskID([]string{id})
		if err != nil {
			return err
		}
		t, err := a.client.UpdateTask(ctx, resolved, patch)
		if err != nil {
			return err
		}
		a.printf("Updated %s\n", taskLine(t))
		return nil
	})
}

// Toggle flips the completed flag.
//
//	toggle <id>
func (a *App) Toggle(ctx context.Context, args []string) error {
	return a.guarded(ctx, func() error {
		id, err := a.taskID(args)
		if err != nil {
			return err
		}
		t, err := a.client.ToggleTask(ctx, id)
		if err != nil {
			return err
		}
		a.printf("%s\n", taskLine(t))
		return nil
	})
}

// Delete removes a task after confirmation.
//
//	delete [-y] <id>
func (a *App) Delete(ctx context.Context, args []string) error {
	id, rest := leadingID(args)

	fs := newFlagSet("delete")
	yes := fs.Bool("y", false, "do not ask for confirmation")
	if err := fs.Parse(rest); err != nil {
		return fmt.Errorf("usage: delete [-y] <id>: %w", err)
	}
	if id == "" {
		id = fs.Arg(0)
	}

	return a.guarded(ctx, func() error {
		resolved, err := a.taskID([]string{id})
		if err != nil {
			return err
		}
		if !*yes && !confirm(a.reader, fmt.Sprintf("Delete task %s?", resolved), a.out) {
			a.printf("Cancelled\n")
			return nil
		}
		if err := a.client.DeleteTask(ctx, resolved); err != nil {
			return err
		}
		a.printf("Task deleted successfully\n")
		return nil
	})
}

// taskID returns the first argument or prompts for an id.
func (a *App) taskID(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	id, err := getSimpleText(a.reader, "Enter task id", a.out)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("task id is required")
	}
	return id, nil
}

// leadingID splits off a positional id written before the flags.
func leadingID(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}
