package method

import "fmt"

const readyScript = `typeof Reveal !== 'undefined' && Reveal.isReady()`

// Nested (vertical) slides are not counted when the deck exposes its horizontal slides.
const totalSlidesScript = `
	(typeof Reveal.getHorizontalSlides === 'function')
		? Reveal.getHorizontalSlides().length
		: Reveal.getTotalSlides()
`

const revealFragmentsScript = `
	(() => {
		const slide = Reveal.getCurrentSlide();
		if (!slide) {
			return 0;
		}
		const fragments = slide.querySelectorAll('.fragment');
		fragments.forEach((f) => {
			f.classList.add('visible', 'current-fragment');
			f.classList.remove('fade-out');
		});
		return fragments.length;
	})()
`

const stateScript = `
	JSON.stringify((() => {
		const indices = Reveal.getIndices();
		return {
			h: indices.h,
			title: document.title
		};
	})())
`

func slideScript(index int) string {
	return fmt.Sprintf(`Reveal.slide(%d, 0, 0)`, index)
}
