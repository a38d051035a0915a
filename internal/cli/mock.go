package cli

import (
	"context"
	"strings"
	"time"

	"github.com/aretw0/architect/pkg/adapters/memory"
	"github.com/aretw0/architect/pkg/ports"
)

// demoBroken hardcodes a color outside the palette.
const demoBroken = "```typescript\n" + `import { Component } from '@angular/core';

@Component({
  selector: 'app-generated-component',
  standalone: true,
  template: ` + "`" + `
    <div style="background: #ff0000; padding: 20px;">
      <h1>Login</h1>
      <button>Submit</button>
    </div>
  ` + "`" + `
})
export class GeneratedComponent {
` + "```"

const demoFixed = "```typescript\n" + `import { Component } from '@angular/core';
import { CommonModule } from '@angular/common';

@Component({
  selector: 'app-generated-component',
  standalone: true,
  imports: [CommonModule],
  template: ` + "`" + `
    <div class="flex items-center justify-center min-h-screen bg-[#0f172a]">
      <div class="p-8 rounded-lg shadow-xl backdrop-blur-md bg-[#1e293b] border border-white/10 max-w-sm w-full">
        <h2 class="text-2xl font-bold text-[#f8fafc] mb-6">Welcome Back</h2>
        <form class="space-y-4">
          <div>
            <label class="block text-sm font-medium text-[#f8fafc]">Email</label>
            <input type="email" class="w-full mt-1 p-2 rounded bg-[#0f172a] border border-white/10 text-[#ffffff] focus:ring-2 focus:ring-[#6366f1]">
          </div>
          <button class="w-full py-2 px-4 bg-[#6366f1] text-[#ffffff] rounded-md font-semibold hover:bg-[#a855f7] transition-colors">
            Sign In
          </button>
        </form>
      </div>
    </div>
  ` + "`" + `,
  styles: []
})
export class GeneratedComponent {}
` + "```"

// DemoCompleter is an offline model: a first attempt that breaks the rules
// and a repair that fixes them. It needs no credential.
func DemoCompleter(latency time.Duration) ports.Completer {
	return memory.CompleterFunc(func(ctx context.Context, req ports.CompletionRequest) (string, error) {
		if latency > 0 {
			t := time.NewTimer(latency)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-t.C:
			}
		}
		if strings.Contains(req.User, "VALIDATION ERRORS") {
			return demoFixed, nil
		}
		return demoBroken, nil
	})
}
